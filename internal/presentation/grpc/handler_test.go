package grpc_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
	"github.com/fraudshield/fraud-analyzer/internal/presentation/grpc"
)

const threeFeatureModel = `{
	"format": "fraudshield.model/v1",
	"kind": "logistic_regression",
	"n_features": 3,
	"params": {"coef": [2, 2, 2], "intercept": -3}
}`

func ptr[T any](v T) *T { return &v }

func startServer(t *testing.T, handle *model.ModelHandle) *grpc.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	infer := usecase.NewInferTransaction(service.NewScoringEngine(handle), nil, nil, logger)
	rules := usecase.NewEvaluateRules(service.NewRuleEngine(), logger)
	handler := grpc.NewFraudAnalyzerHandler(infer, rules, logger)

	srv, err := grpc.NewServer(handler, grpc.ServerConfig{Address: "bufnet", Reflection: true}, logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := grpc.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func loadedHandle(t *testing.T) *model.ModelHandle {
	t.Helper()
	c, a, err := ml.Decode([]byte(threeFeatureModel))
	require.NoError(t, err)
	return model.NewModelHandle(c, ml.Describe("test://model.json", a, c))
}

func TestInfer_Heuristic(t *testing.T) {
	client := startServer(t, model.AbsentModel())

	resp, err := client.Infer(context.Background(), &dto.InferRequest{
		TransactionID: ptr("t1"),
		Amount:        ptr(8000.0),
		CardID:        ptr("c1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.TransactionID)
	assert.Equal(t, "heuristic", resp.Explain)
	assert.InDelta(t, 0.8, resp.Score, 1e-12)
	assert.True(t, resp.IsFraud)
}

func TestInfer_Model(t *testing.T) {
	client := startServer(t, loadedHandle(t))

	resp, err := client.Infer(context.Background(), &dto.InferRequest{
		TransactionID: ptr("m1"),
		Amount:        ptr(5.0),
		CardID:        ptr("c1"),
		Features:      map[string]any{"vector": []any{1.0, 1.0, 1.0}},
	})
	require.NoError(t, err)
	assert.Equal(t, "model", resp.Explain)
	assert.Greater(t, resp.Score, 0.5)
	assert.True(t, resp.IsFraud)
}

func TestInfer_MissingFieldIsInvalidArgument(t *testing.T) {
	client := startServer(t, model.AbsentModel())

	_, err := client.Infer(context.Background(), &dto.InferRequest{
		TransactionID: ptr("t1"),
		CardID:        ptr("c1"),
	})
	require.Error(t, err)
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Contains(t, st.Message(), "amount")
}

func TestInfer_ShapeMismatchIsInternal(t *testing.T) {
	client := startServer(t, loadedHandle(t))

	_, err := client.Infer(context.Background(), &dto.InferRequest{
		TransactionID: ptr("bad"),
		Amount:        ptr(5.0),
		CardID:        ptr("c1"),
		Features:      map[string]any{"vector": []any{1.0, 2.0}},
	})
	require.Error(t, err)
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "X has 2 features, but logistic_regression is expecting 3 features as input", st.Message())
}

func TestEvaluate(t *testing.T) {
	client := startServer(t, model.AbsentModel())

	tests := []struct {
		name   string
		amount float64
		risk   float64
		reason string
	}{
		{"approve", 100, 0.1, service.ReasonAllPassed},
		{"high risk", 100, 0.9, service.ReasonHighRiskScore},
		{"high amount", 60000, 0.1, service.ReasonHighAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Evaluate(context.Background(), &dto.RuleRequest{
				TransactionID: ptr("r1"),
				UserID:        ptr("u1"),
				Amount:        ptr(tt.amount),
				RiskScore:     ptr(tt.risk),
			})
			require.NoError(t, err)
			assert.Equal(t, "r1", resp.TransactionID)
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}
}

func TestEvaluate_MissingFieldIsInvalidArgument(t *testing.T) {
	client := startServer(t, model.AbsentModel())

	_, err := client.Evaluate(context.Background(), &dto.RuleRequest{TransactionID: ptr("r1")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthService(t *testing.T) {
	client := startServer(t, model.AbsentModel())

	resp, err := healthpb.NewHealthClient(client.Conn()).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: grpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestNewServer_BadTLSFiles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := grpc.NewServer(grpc.NewFraudAnalyzerHandler(nil, nil, logger), grpc.ServerConfig{
		Address:     ":0",
		TLSCertFile: "/nonexistent/cert.pem",
		TLSKeyFile:  "/nonexistent/key.pem",
	}, logger)
	assert.Error(t, err)
}
