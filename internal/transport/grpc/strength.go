package transportgrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/arklim/passmeter/internal/usecase"
)

const (
	// StrengthServiceName is the fully qualified gRPC service name.
	StrengthServiceName = "passmeter.v1.StrengthService"

	grpcSource = "grpc"
)

// StrengthServiceServer is the server API for the strength service.
type StrengthServiceServer interface {
	Classify(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Evaluate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// StrengthServer serves password classification over gRPC.
type StrengthServer struct {
	service *usecase.StrengthService
}

// NewStrengthServer constructs a StrengthServer.
func NewStrengthServer(service *usecase.StrengthService) *StrengthServer {
	return &StrengthServer{service: service}
}

// Classify returns the level name of the password.
func (s *StrengthServer) Classify(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.service.Classify(req.GetValue()).String()), nil
}

// Evaluate returns the level, score breakdown, counts and zxcvbn estimate of the password.
func (s *StrengthServer) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	result, err := s.service.Evaluate(ctx, usecase.EvaluateInput{Password: req.GetValue(), Source: grpcSource})
	if err != nil {
		if errors.Is(err, usecase.ErrPasswordTooLong) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "failed to evaluate password")
	}

	ev := result.Evaluation
	resp, err := structpb.NewStruct(map[string]any{
		"level":        ev.Level.String(),
		"score":        ev.Breakdown.Total(),
		"zxcvbn_score": ev.Estimate.Score,
		"cached":       result.Cached,
		"counts": map[string]any{
			"length":    ev.Counts.Length,
			"digits":    ev.Counts.Digits,
			"symbols":   ev.Counts.Symbols,
			"lowercase": ev.Counts.Lowercase,
			"uppercase": ev.Counts.Uppercase,
		},
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode evaluation")
	}
	return resp, nil
}

// RegisterStrengthServiceServer registers srv on s.
func RegisterStrengthServiceServer(s grpc.ServiceRegistrar, srv StrengthServiceServer) {
	s.RegisterService(&strengthServiceDesc, srv)
}

func strengthClassifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StrengthServiceServer).Classify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + StrengthServiceName + "/Classify"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StrengthServiceServer).Classify(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func strengthEvaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StrengthServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + StrengthServiceName + "/Evaluate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StrengthServiceServer).Evaluate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var strengthServiceDesc = grpc.ServiceDesc{
	ServiceName: StrengthServiceName,
	HandlerType: (*StrengthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: strengthClassifyHandler},
		{MethodName: "Evaluate", Handler: strengthEvaluateHandler},
	},
	Streams: []grpc.StreamDesc{},
}

var _ StrengthServiceServer = (*StrengthServer)(nil)
