// Package v1 holds the gRPC contract of the scorecard service declared in scorecard.proto.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const ServiceName = "scorecard.v1.Scorecard"

const (
	Scorecard_CalculateScore_FullMethodName = "/scorecard.v1.Scorecard/CalculateScore"
	Scorecard_ExplainScore_FullMethodName   = "/scorecard.v1.Scorecard/ExplainScore"
	Scorecard_ListRoles_FullMethodName      = "/scorecard.v1.Scorecard/ListRoles"
	Scorecard_ListVariants_FullMethodName   = "/scorecard.v1.Scorecard/ListVariants"
	Scorecard_GetRubric_FullMethodName      = "/scorecard.v1.Scorecard/GetRubric"
	Scorecard_ApplyTemplate_FullMethodName  = "/scorecard.v1.Scorecard/ApplyTemplate"
	Scorecard_SaveTemplate_FullMethodName   = "/scorecard.v1.Scorecard/SaveTemplate"
	Scorecard_ListTemplates_FullMethodName  = "/scorecard.v1.Scorecard/ListTemplates"
)

// ScorecardClient is the client API for the Scorecard service.
type ScorecardClient interface {
	CalculateScore(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	ExplainScore(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	ListRoles(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	ListVariants(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	GetRubric(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	ApplyTemplate(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	SaveTemplate(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
	ListTemplates(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error)
}

type scorecardClient struct {
	cc grpc.ClientConnInterface
}

func NewScorecardClient(cc grpc.ClientConnInterface) ScorecardClient {
	return &scorecardClient{cc}
}

func (c *scorecardClient) invoke(ctx context.Context, method string, in *dynamicpb.Message, md protoreflect.MessageDescriptor, opts []grpc.CallOption) (*dynamicpb.Message, error) {
	out := dynamicpb.NewMessage(md)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *scorecardClient) CalculateScore(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_CalculateScore_FullMethodName, in, ScoreResultDesc, opts)
}

func (c *scorecardClient) ExplainScore(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_ExplainScore_FullMethodName, in, ScoreExplanationDesc, opts)
}

func (c *scorecardClient) ListRoles(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_ListRoles_FullMethodName, in, ListRolesResponseDesc, opts)
}

func (c *scorecardClient) ListVariants(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_ListVariants_FullMethodName, in, VariantInfoDesc, opts)
}

func (c *scorecardClient) GetRubric(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_GetRubric_FullMethodName, in, RubricDesc, opts)
}

func (c *scorecardClient) ApplyTemplate(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_ApplyTemplate_FullMethodName, in, ScoreResultDesc, opts)
}

func (c *scorecardClient) SaveTemplate(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_SaveTemplate_FullMethodName, in, SaveTemplateResponseDesc, opts)
}

func (c *scorecardClient) ListTemplates(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, Scorecard_ListTemplates_FullMethodName, in, ListTemplatesResponseDesc, opts)
}

// ScorecardServer is the server API for the Scorecard service.
// Implementations must embed UnimplementedScorecardServer.
type ScorecardServer interface {
	CalculateScore(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ExplainScore(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ListRoles(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ListVariants(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	GetRubric(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ApplyTemplate(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	SaveTemplate(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ListTemplates(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	mustEmbedUnimplementedScorecardServer()
}

// UnimplementedScorecardServer must be embedded to have forward compatible implementations.
type UnimplementedScorecardServer struct{}

func (UnimplementedScorecardServer) CalculateScore(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CalculateScore not implemented")
}
func (UnimplementedScorecardServer) ExplainScore(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ExplainScore not implemented")
}
func (UnimplementedScorecardServer) ListRoles(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListRoles not implemented")
}
func (UnimplementedScorecardServer) ListVariants(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListVariants not implemented")
}
func (UnimplementedScorecardServer) GetRubric(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRubric not implemented")
}
func (UnimplementedScorecardServer) ApplyTemplate(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApplyTemplate not implemented")
}
func (UnimplementedScorecardServer) SaveTemplate(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SaveTemplate not implemented")
}
func (UnimplementedScorecardServer) ListTemplates(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListTemplates not implemented")
}
func (UnimplementedScorecardServer) mustEmbedUnimplementedScorecardServer() {}

func RegisterScorecardServer(s grpc.ServiceRegistrar, srv ScorecardServer) {
	s.RegisterService(&Scorecard_ServiceDesc, srv)
}

type unaryCall func(ScorecardServer, context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)

func unaryHandler(fullMethod string, md protoreflect.MessageDescriptor, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := dynamicpb.NewMessage(md)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ScorecardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ScorecardServer), ctx, req.(*dynamicpb.Message))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Scorecard_ServiceDesc is the grpc.ServiceDesc for the Scorecard service.
var Scorecard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScorecardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CalculateScore", Handler: unaryHandler(Scorecard_CalculateScore_FullMethodName, ScoreRequestDesc, ScorecardServer.CalculateScore)},
		{MethodName: "ExplainScore", Handler: unaryHandler(Scorecard_ExplainScore_FullMethodName, ScoreRequestDesc, ScorecardServer.ExplainScore)},
		{MethodName: "ListRoles", Handler: unaryHandler(Scorecard_ListRoles_FullMethodName, ListRolesRequestDesc, ScorecardServer.ListRoles)},
		{MethodName: "ListVariants", Handler: unaryHandler(Scorecard_ListVariants_FullMethodName, RoleRequestDesc, ScorecardServer.ListVariants)},
		{MethodName: "GetRubric", Handler: unaryHandler(Scorecard_GetRubric_FullMethodName, RoleRequestDesc, ScorecardServer.GetRubric)},
		{MethodName: "ApplyTemplate", Handler: unaryHandler(Scorecard_ApplyTemplate_FullMethodName, TemplateRequestDesc, ScorecardServer.ApplyTemplate)},
		{MethodName: "SaveTemplate", Handler: unaryHandler(Scorecard_SaveTemplate_FullMethodName, SaveTemplateRequestDesc, ScorecardServer.SaveTemplate)},
		{MethodName: "ListTemplates", Handler: unaryHandler(Scorecard_ListTemplates_FullMethodName, RoleRequestDesc, ScorecardServer.ListTemplates)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/scorecard.proto",
}
