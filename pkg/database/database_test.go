package database

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("in-memory sqlite", func(t *testing.T) {
		db, err := New(WithMaxOpenConns(1))
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("empty driver", func(t *testing.T) {
		_, err := New(WithDriver(""))
		assert.EqualError(t, err, "database driver cannot be empty")
	})

	t.Run("empty data source", func(t *testing.T) {
		_, err := New(WithDataSource(""))
		assert.EqualError(t, err, "database data source cannot be empty")
	})

	t.Run("unknown driver fails after retries", func(t *testing.T) {
		_, err := New(WithDriver("nope"), WithRetry(2, time.Millisecond))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
	})
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ? AND z = ?"

	assert.Equal(t, q, Rebind(DriverSQLite, q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2 AND z = $3", Rebind(DriverPostgres, q))
	assert.Equal(t, q, Rebind("unknown", q))
}
