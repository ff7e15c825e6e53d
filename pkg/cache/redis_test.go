package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := New(ctx, WithAddress("127.0.0.1:1"), WithPassword("secret"), WithDB(2), WithNamespace("test"))

	assert.ErrorContains(t, err, "connect redis 127.0.0.1:1")
	assert.Nil(t, c)
}

func TestDelete_NoKeys(t *testing.T) {
	c := &Cache{}
	assert.NoError(t, c.Delete(context.Background()))
}

func TestKeyNamespace(t *testing.T) {
	assert.Equal(t, "scorecard:templates:tier1_agent", (&Cache{}).key("scorecard:templates:tier1_agent"))
	assert.Equal(t, "staging:scorecard:templates:tier1_agent", (&Cache{namespace: "staging"}).key("scorecard:templates:tier1_agent"))
}
