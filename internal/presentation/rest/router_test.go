package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
	"github.com/fraudshield/fraud-analyzer/internal/presentation/rest"
)

const threeFeatureModel = `{
	"format": "fraudshield.model/v1",
	"kind": "logistic_regression",
	"n_features": 3,
	"params": {"coef": [2, 2, 2], "intercept": -3}
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, handle *model.ModelHandle, opts ...func(*rest.RouterConfig)) *httptest.Server {
	t.Helper()
	logger := quietLogger()

	infer := usecase.NewInferTransaction(service.NewScoringEngine(handle), nil, nil, logger)
	rules := usecase.NewEvaluateRules(service.NewRuleEngine(), logger)

	cfg := rest.RouterConfig{
		Inference: rest.NewInferenceHandler(infer, rules, logger),
		Health:    rest.NewHealthHandler(handle, logger),
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httptest.NewServer(rest.NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func loadedHandle(t *testing.T) *model.ModelHandle {
	t.Helper()
	c, a, err := ml.Decode([]byte(threeFeatureModel))
	require.NoError(t, err)
	return model.NewModelHandle(c, ml.Describe("test://model.json", a, c))
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeInfer(t *testing.T, data []byte) dto.InferResponse {
	t.Helper()
	var out dto.InferResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func decodeDetail(t *testing.T, data []byte) string {
	t.Helper()
	var out rest.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out.Detail
}

func TestInfer_HeuristicMode(t *testing.T) {
	srv := newServer(t, model.AbsentModel())

	tests := []struct {
		name    string
		body    string
		score   float64
		isFraud bool
	}{
		{"small amount", `{"transaction_id":"t1","amount":50,"card_id":"c1"}`, 0.005, false},
		{"amount at scale", `{"transaction_id":"t2","amount":10000,"card_id":"c1"}`, 1.0, true},
		{"amount at threshold", `{"transaction_id":"t3","amount":7000,"card_id":"c1"}`, 0.7, false},
		{"zero amount", `{"transaction_id":"t4","amount":0,"card_id":"c1"}`, 0, false},
		{"features are ignored", `{"transaction_id":"t5","amount":100,"card_id":"c1","features":{"vector":[9,9,9]}}`, 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, srv, "/infer", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			out := decodeInfer(t, data)
			assert.Equal(t, "heuristic", out.Explain)
			assert.InDelta(t, tt.score, out.Score, 1e-12)
			assert.Equal(t, tt.isFraud, out.IsFraud)
		})
	}
}

func TestInfer_ModelMode(t *testing.T) {
	srv := newServer(t, loadedHandle(t))

	resp, data := post(t, srv, "/infer", `{"transaction_id":"m1","amount":5,"card_id":"c","features":{"vector":[1,1,1]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	out := decodeInfer(t, data)
	assert.Equal(t, "m1", out.TransactionID)
	assert.Equal(t, "model", out.Explain)
	assert.Greater(t, out.Score, 0.5)
	assert.True(t, out.IsFraud)
}

func TestInfer_ShapeMismatchReturns500AndKeepsServing(t *testing.T) {
	srv := newServer(t, loadedHandle(t))

	resp, data := post(t, srv, "/infer", `{"transaction_id":"bad","amount":5,"card_id":"c","features":{"vector":[1,2]}}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "X has 2 features, but logistic_regression is expecting 3 features as input", decodeDetail(t, data))

	// No vector falls back to [amount], which is also the wrong width.
	resp, _ = post(t, srv, "/infer", `{"transaction_id":"bad2","amount":5,"card_id":"c"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, data = post(t, srv, "/infer", `{"transaction_id":"good","amount":5,"card_id":"c","features":{"vector":[0,0,0]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.False(t, decodeInfer(t, data).IsFraud)
}

func TestInfer_ValidationErrors(t *testing.T) {
	srv := newServer(t, model.AbsentModel())

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing card_id", `{"transaction_id":"t","amount":1}`, "card_id"},
		{"null amount", `{"transaction_id":"t","amount":null,"card_id":"c"}`, "amount"},
		{"wrong type", `{"transaction_id":"t","amount":"1","card_id":"c"}`, "amount"},
		{"features not an object", `{"transaction_id":"t","amount":1,"card_id":"c","features":"x"}`, "features"},
		{"malformed JSON", `{"transaction_id":`, "malformed JSON"},
		{"empty body", ``, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, srv, "/infer", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, decodeDetail(t, data), tt.wantMsg)
		})
	}
}

func TestInfer_MethodNotAllowed(t *testing.T) {
	srv := newServer(t, model.AbsentModel())

	resp, err := http.Get(srv.URL + "/infer")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestInfer_IdempotentUnderConcurrency(t *testing.T) {
	srv := newServer(t, loadedHandle(t))
	body := `{"transaction_id":"same","amount":5,"card_id":"c","features":{"vector":[0.2,0.4,0.1]}}`

	_, want := post(t, srv, "/infer", body)

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/infer", "application/json", strings.NewReader(body))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			results[i], _ = io.ReadAll(resp.Body)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.JSONEq(t, string(want), string(got))
	}
}

func TestEvaluate(t *testing.T) {
	srv := newServer(t, model.AbsentModel())

	resp, data := post(t, srv, "/evaluate", `{"transaction_id":"r1","user_id":"u","amount":75000,"risk_score":0.1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var out dto.RuleResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, dto.RuleResponse{TransactionID: "r1", Action: "MANUAL_REVIEW", Reason: "High transaction amount"}, out)

	resp, _ = post(t, srv, "/evaluate", `{"transaction_id":"r1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestReadyz(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		srv := newServer(t, model.AbsentModel())
		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out rest.ReadinessResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "absent", out.Checks["model"])
		assert.Equal(t, "heuristic", out.Model.Explain)
	})

	t.Run("loaded", func(t *testing.T) {
		srv := newServer(t, loadedHandle(t))
		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()

		var out rest.ReadinessResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "loaded", out.Checks["model"])
		assert.Equal(t, "logistic_regression", out.Model.Kind)
		assert.Equal(t, 3, out.Model.NumFeatures)
		assert.Equal(t, "predict_proba", out.Model.Capability)
	})
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, model.AbsentModel())
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out rest.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "healthy", out.Status)
	assert.Equal(t, "fraud-analyzer", out.Service)
}

func TestRouter_RateLimit(t *testing.T) {
	srv := newServer(t, model.AbsentModel(), func(c *rest.RouterConfig) {
		c.RateLimit = 0.001
		c.RateBurst = 1
	})
	body := `{"transaction_id":"t","amount":1,"card_id":"c"}`

	resp, _ := post(t, srv, "/infer", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := post(t, srv, "/infer", body)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", decodeDetail(t, data))

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newServer(t, model.AbsentModel(), func(c *rest.RouterConfig) {
		c.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "fraud_inferences_total 1\n")
		})
	})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fraud_inferences_total")
}

func TestRouter_RequestID(t *testing.T) {
	srv := newServer(t, model.AbsentModel())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(rest.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(rest.RequestIDHeader))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(rest.RequestIDHeader))
}

func TestRecoverMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	h := rest.Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		rest.RequestIDMiddleware(),
		rest.RecoverMiddleware(logger),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/infer", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.Contains(t, logs.String(), "panic while serving request")
}
