package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	pb "github.com/godilite/qa-scorecard/api/v1"
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/godilite/qa-scorecard/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const defaultGRPCTimeout = 10 * time.Second

type roleRequest struct {
	Role    string `json:"role"`
	Variant string `json:"variant,omitempty"`
}

type GRPCHandlers struct {
	pb.UnimplementedScorecardServer
	scoring ScoringService
	logger  *zap.Logger
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(scoring ScoringService, logger *zap.Logger) *GRPCHandlers {
	if scoring == nil {
		panic("nil ScoringService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		scoring: scoring,
		logger:  logger.Named("grpc-handler"),
	}
}

// decode rejects messages of another type than md before reading their fields.
func decode(in *dynamicpb.Message, md protoreflect.MessageDescriptor, dest any) error {
	if in != nil && in.Descriptor().FullName() != md.FullName() {
		return status.Errorf(codes.InvalidArgument, "expected %s, got %s", md.FullName(), in.Descriptor().FullName())
	}
	if err := pb.Decode(in, dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func (s *GRPCHandlers) encode(op string, md protoreflect.MessageDescriptor, v any) (*dynamicpb.Message, error) {
	out, err := pb.Encode(md, v)
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
	return out, nil
}

func requireRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return status.Error(codes.InvalidArgument, "role is required")
	}
	return nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, scorecard.ErrManualScoreOutOfRange):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrRubricNotFound), errors.Is(err, service.ErrTemplateNotFound):
		s.logger.Info("not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) CalculateScore(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req service.ScoreRequest
	if err := decode(in, pb.ScoreRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.scoring.CalculateScore(ctx, req)
	if err != nil {
		return nil, s.handleError(ctx, "CalculateScore", err)
	}
	return s.encode("CalculateScore", pb.ScoreResultDesc, result)
}

func (s *GRPCHandlers) ExplainScore(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req service.ScoreRequest
	if err := decode(in, pb.ScoreRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	exp, err := s.scoring.ExplainScore(ctx, req)
	if err != nil {
		return nil, s.handleError(ctx, "ExplainScore", err)
	}
	return s.encode("ExplainScore", pb.ScoreExplanationDesc, exp)
}

func (s *GRPCHandlers) ListRoles(ctx context.Context, _ *dynamicpb.Message) (*dynamicpb.Message, error) {
	return s.encode("ListRoles", pb.ListRolesResponseDesc, map[string][]string{"roles": s.scoring.Roles()})
}

func (s *GRPCHandlers) ListVariants(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req roleRequest
	if err := decode(in, pb.RoleRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}
	return s.encode("ListVariants", pb.VariantInfoDesc, s.scoring.ListVariants(req.Role))
}

func (s *GRPCHandlers) GetRubric(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req roleRequest
	if err := decode(in, pb.RoleRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}

	view, err := s.scoring.GetRubric(req.Role, req.Variant)
	if err != nil {
		return nil, s.handleError(ctx, "GetRubric", err)
	}
	return s.encode("GetRubric", pb.RubricDesc, view)
}

func (s *GRPCHandlers) ApplyTemplate(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req service.TemplateRequest
	if err := decode(in, pb.TemplateRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}
	if req.TemplateID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "template_id must be positive")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.scoring.ApplyTemplate(ctx, req)
	if err != nil {
		return nil, s.handleError(ctx, "ApplyTemplate", err)
	}
	return s.encode("ApplyTemplate", pb.ScoreResultDesc, result)
}

func (s *GRPCHandlers) SaveTemplate(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req service.SaveTemplateRequest
	if err := decode(in, pb.SaveTemplateRequestDesc, &req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.scoring.SaveTemplate(ctx, req); err != nil {
		return nil, s.handleError(ctx, "SaveTemplate", err)
	}
	return dynamicpb.NewMessage(pb.SaveTemplateResponseDesc), nil
}

func (s *GRPCHandlers) ListTemplates(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req roleRequest
	if err := decode(in, pb.RoleRequestDesc, &req); err != nil {
		return nil, err
	}
	if err := requireRole(req.Role); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	list, err := s.scoring.ListTemplates(ctx, req.Role)
	if err != nil {
		return nil, s.handleError(ctx, "ListTemplates", err)
	}
	return s.encode("ListTemplates", pb.ListTemplatesResponseDesc, map[string][]service.TemplateSummary{"templates": list})
}
