package grpc

// proto.go hand-writes the service description for
// fraudshield.analyzer.v1.FraudAnalyzer. Messages travel as JSON via jsonCodec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fraudshield.analyzer.v1.FraudAnalyzer"

// Full method names.
const (
	MethodInfer    = "/" + ServiceName + "/Infer"
	MethodEvaluate = "/" + ServiceName + "/Evaluate"
)

// FraudAnalyzerServer is the server API for FraudAnalyzer.
type FraudAnalyzerServer interface {
	Infer(context.Context, *dto.InferRequest) (*dto.InferResponse, error)
	Evaluate(context.Context, *dto.RuleRequest) (*dto.RuleResponse, error)
	mustEmbedUnimplementedFraudAnalyzerServer()
}

// UnimplementedFraudAnalyzerServer provides forward-compatible default implementations.
type UnimplementedFraudAnalyzerServer struct{}

func (UnimplementedFraudAnalyzerServer) Infer(context.Context, *dto.InferRequest) (*dto.InferResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Infer not implemented")
}
func (UnimplementedFraudAnalyzerServer) Evaluate(context.Context, *dto.RuleRequest) (*dto.RuleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Evaluate not implemented")
}
func (UnimplementedFraudAnalyzerServer) mustEmbedUnimplementedFraudAnalyzerServer() {}

// RegisterFraudAnalyzerServer registers the FraudAnalyzerServer with the gRPC server.
func RegisterFraudAnalyzerServer(s grpclib.ServiceRegistrar, srv FraudAnalyzerServer) {
	s.RegisterService(&fraudAnalyzerServiceDesc, srv)
}

var fraudAnalyzerServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FraudAnalyzerServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Infer", Handler: inferHandler},
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "fraudshield/analyzer/v1/analyzer.proto",
}

// decodeErr reports an undecodable message as InvalidArgument.
func decodeErr(err error) error {
	return status.Error(codes.InvalidArgument, status.Convert(err).Message())
}

func inferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(dto.InferRequest)
	if err := dec(in); err != nil {
		return nil, decodeErr(err)
	}
	if interceptor == nil {
		return srv.(FraudAnalyzerServer).Infer(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodInfer}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FraudAnalyzerServer).Infer(ctx, req.(*dto.InferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(dto.RuleRequest)
	if err := dec(in); err != nil {
		return nil, decodeErr(err)
	}
	if interceptor == nil {
		return srv.(FraudAnalyzerServer).Evaluate(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodEvaluate}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FraudAnalyzerServer).Evaluate(ctx, req.(*dto.RuleRequest))
	}
	return interceptor(ctx, in, info, handler)
}
