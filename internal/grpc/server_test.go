package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	pb "github.com/godilite/qa-scorecard/api/v1"
	"github.com/godilite/qa-scorecard/internal/presetcache"
	cachemocks "github.com/godilite/qa-scorecard/internal/presetcache/mocks"
	"github.com/godilite/qa-scorecard/internal/repository"
	"github.com/godilite/qa-scorecard/internal/rubrics"
	"github.com/godilite/qa-scorecard/internal/service"
	dbbuilder "github.com/godilite/qa-scorecard/pkg/database"
	grpcserver "github.com/godilite/qa-scorecard/pkg/grpc/server"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// startScorecardServer runs the full stack on an in-memory database behind bufconn.
func startScorecardServer(t *testing.T) pb.ScorecardClient {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver(dbbuilder.DriverSQLite),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewTemplateScorecardRepository(db, dbbuilder.DriverSQLite)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	catalog, err := rubrics.Default()
	require.NoError(t, err)

	storage := presetcache.New(repo, cachemocks.NewMemoryCache(), zap.NewNop(), time.Minute)
	svc := service.NewScoringService(catalog, storage, zap.NewNop())

	lis := bufconn.Listen(1024 * 1024)
	srv, err := grpcserver.New(grpcserver.WithListener(lis), grpcserver.WithLogging(true), grpcserver.WithRecovery(true))
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterScorecardServer(s, NewGRPCHandlers(svc, zap.NewNop()))
	})
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pb.NewScorecardClient(conn)
}

type rpc func(context.Context, *dynamicpb.Message, ...grpc.CallOption) (*dynamicpb.Message, error)

func call[T any](t *testing.T, fn rpc, md protoreflect.MessageDescriptor, req any) (T, error) {
	t.Helper()
	var out T

	in, err := pb.Encode(md, req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := fn(ctx, in)
	if err != nil {
		return out, err
	}
	require.NoError(t, pb.Decode(resp, &out))
	return out, nil
}

func TestScorecardServer_EndToEnd(t *testing.T) {
	client := startScorecardServer(t)

	t.Run("calculate score", func(t *testing.T) {
		res, err := call[service.ScoreResult](t, client.CalculateScore, pb.ScoreRequestDesc, map[string]any{
			"role":    "tier2_agent",
			"ratings": map[string]any{"communication": 2, "knowledge": 1, "escalation": "N/A"},
		})

		require.NoError(t, err)
		require.NotNil(t, res.Score)
		assert.Equal(t, 50, *res.Score)
		assert.Nil(t, res.Variant)
	})

	t.Run("explain score", func(t *testing.T) {
		exp, err := call[service.ScoreExplanation](t, client.ExplainScore, pb.ScoreRequestDesc, map[string]any{
			"role":    "tier2_agent",
			"ratings": map[string]any{"communication": 0},
		})

		require.NoError(t, err)
		assert.Equal(t, 30, exp.ActiveWeight)
		require.NotNil(t, exp.Score)
		assert.Equal(t, 100, *exp.Score)
	})

	t.Run("manual role", func(t *testing.T) {
		res, err := call[service.ScoreResult](t, client.CalculateScore, pb.ScoreRequestDesc, map[string]any{
			"role":         "billing_specialist",
			"manual_score": 72,
		})

		require.NoError(t, err)
		require.NotNil(t, res.Score)
		assert.Equal(t, 72, *res.Score)
		assert.False(t, res.AutoScorable)

		_, err = call[service.ScoreResult](t, client.CalculateScore, pb.ScoreRequestDesc, map[string]any{
			"role":         "billing_specialist",
			"manual_score": 101,
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("variants and rubric", func(t *testing.T) {
		info, err := call[service.VariantInfo](t, client.ListVariants, pb.RoleRequestDesc, map[string]any{"role": "senior_agent"})
		require.NoError(t, err)
		assert.Equal(t, []string{"escalations", "technical"}, info.Variants)

		view, err := call[service.RubricView](t, client.GetRubric, pb.RoleRequestDesc, map[string]any{"role": "senior_agent", "variant": "technical"})
		require.NoError(t, err)
		assert.Equal(t, "technical", view.Variant)
		assert.Len(t, view.Sections, 3)

		_, err = call[service.RubricView](t, client.GetRubric, pb.RoleRequestDesc, map[string]any{"role": "senior_agent", "variant": "retired"})
		assert.Equal(t, codes.NotFound, status.Code(err))

		roles, err := call[struct {
			Roles []string `json:"roles"`
		}](t, client.ListRoles, pb.ListRolesRequestDesc, map[string]any{})
		require.NoError(t, err)
		assert.Contains(t, roles.Roles, "tier1_agent")
	})

	t.Run("template round trip", func(t *testing.T) {
		_, err := call[map[string]any](t, client.SaveTemplate, pb.SaveTemplateRequestDesc, map[string]any{
			"template_id": 7,
			"name":        "Password reset",
			"role":        "tier2_agent",
			"ratings":     map[string]any{"communication": 2, "knowledge": 1, "escalation": "N/A"},
		})
		require.NoError(t, err)

		list, err := call[struct {
			Templates []service.TemplateSummary `json:"templates"`
		}](t, client.ListTemplates, pb.RoleRequestDesc, map[string]any{"role": "tier2_agent"})
		require.NoError(t, err)
		require.Len(t, list.Templates, 1)
		assert.Equal(t, int64(3), list.Templates[0].Criteria)

		res, err := call[service.ScoreResult](t, client.ApplyTemplate, pb.TemplateRequestDesc, map[string]any{"template_id": 7, "role": "tier2_agent"})
		require.NoError(t, err)
		require.NotNil(t, res.Score)
		assert.Equal(t, 50, *res.Score)
		assert.Len(t, res.Ratings, 3)

		_, err = call[service.ScoreResult](t, client.ApplyTemplate, pb.TemplateRequestDesc, map[string]any{"template_id": 8, "role": "tier2_agent"})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("typed messages on the wire", func(t *testing.T) {
		in, err := pb.Encode(pb.ScoreRequestDesc, map[string]any{
			"role":             "tier2_agent",
			"scorecard_values": map[string]any{"communication": 2, "knowledge": 1, "empathy": 4},
		})
		require.NoError(t, err)

		resp, err := client.CalculateScore(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, pb.ScoreResultDesc.FullName(), resp.Descriptor().FullName())
		assert.Equal(t, int64(50), resp.Get(pb.ScoreResultDesc.Fields().ByName("score")).Int())
		assert.False(t, resp.Has(pb.ScoreResultDesc.Fields().ByName("variant")))
	})

	t.Run("undeclared field fails before the call", func(t *testing.T) {
		_, err := pb.Encode(pb.ScoreRequestDesc, map[string]any{"role": "tier2_agent", "rating": map[string]any{}})
		assert.ErrorContains(t, err, "unknown field")
	})

	t.Run("rejects invalid preset", func(t *testing.T) {
		_, err := call[map[string]any](t, client.SaveTemplate, pb.SaveTemplateRequestDesc, map[string]any{
			"template_id": 7,
			"name":        "Password reset",
			"role":        "tier2_agent",
			"ratings":     map[string]any{"escalation": 3},
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}
