package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
	"github.com/fraudshield/fraud-analyzer/pkg/tlsutil"
)

const forestDescription = `
kind: random_forest
n_features: 1
metadata:
  owner: "risk-team"
params:
  trees:
    - nodes:
        - {feature: 0, threshold: 100, left: 1, right: 2}
        - {feature: -1, left: -1, right: -1, value: [1, 0]}
        - {feature: -1, left: -1, right: -1, value: [0, 1]}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPackAndInspect(t *testing.T) {
	dir := t.TempDir()
	desc := writeFile(t, dir, "forest.yaml", forestDescription)
	artifact := filepath.Join(dir, "model.json.gz")

	out, err := execute(t, "pack", desc, "--out", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote random_forest artifact")

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.True(t, ml.IsGzip(data))

	out, err = execute(t, "inspect", artifact)
	require.NoError(t, err)

	var got inspection
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, ml.KindRandomForest, got.Kind)
	assert.Equal(t, ml.FormatV1, got.Format)
	assert.Equal(t, 1, got.NumFeatures)
	assert.Equal(t, "predict_proba", got.Capability)
	assert.Equal(t, "risk-team", got.Metadata["owner"])
	assert.InDelta(t, 0.5, got.Threshold, 1e-12)
}

func TestPack_JSONUncompressed(t *testing.T) {
	dir := t.TempDir()
	desc := writeFile(t, dir, "linear.json",
		`{"kind":"linear_svc","n_features":2,"params":{"coef":[1,-1],"intercept":0}}`)
	artifact := filepath.Join(dir, "model.json")

	_, err := execute(t, "pack", desc, "--out", artifact, "--gzip=false")
	require.NoError(t, err)

	out, err := execute(t, "inspect", artifact, "-o", "json")
	require.NoError(t, err)

	var got inspection
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ml.KindLinearSVC, got.Kind)
	assert.Equal(t, "predict", got.Capability)
}

func TestPack_RejectsInvalidDescription(t *testing.T) {
	dir := t.TempDir()
	desc := writeFile(t, dir, "bad.yaml", "kind: logistic_regression\nn_features: 3\nparams:\n  coef: [1, 2]\n")
	artifact := filepath.Join(dir, "model.json")

	_, err := execute(t, "pack", desc, "--out", artifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model description")

	_, statErr := os.Stat(artifact)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written for an invalid description")
}

func TestInspect_MissingArtifact(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestInspect_UnknownOutputFormat(t *testing.T) {
	dir := t.TempDir()
	desc := writeFile(t, dir, "forest.yaml", forestDescription)
	artifact := filepath.Join(dir, "model.json")
	_, err := execute(t, "pack", desc, "--out", artifact)
	require.NoError(t, err)

	_, err = execute(t, "inspect", artifact, "-o", "toml")
	assert.ErrorContains(t, err, "unknown output format")
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestScore_Heuristic(t *testing.T) {
	dir := t.TempDir()
	txs := writeFile(t, dir, "txs.json", `[
		{"transaction_id":"a","amount":50,"card_id":"c"},
		{"transaction_id":"b","amount":9000,"card_id":"c"},
		{"transaction_id":"c","card_id":"c"}
	]`)

	out, err := execute(t, "score", txs)
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 3)
	assert.Equal(t, "heuristic", lines[0]["explain"])
	assert.Equal(t, false, lines[0]["is_fraud"])
	assert.Equal(t, true, lines[1]["is_fraud"])
	assert.Contains(t, lines[2]["error"], "amount")
	assert.EqualValues(t, 2, lines[2]["index"])
}

func TestScore_WithModel(t *testing.T) {
	dir := t.TempDir()
	desc := writeFile(t, dir, "forest.yaml", forestDescription)
	artifact := filepath.Join(dir, "model.json.gz")
	_, err := execute(t, "pack", desc, "--out", artifact)
	require.NoError(t, err)

	txs := writeFile(t, dir, "txs.json", `[
		{"transaction_id":"low","amount":50,"card_id":"c"},
		{"transaction_id":"high","amount":500,"card_id":"c"},
		{"transaction_id":"wide","amount":1,"card_id":"c","features":{"vector":[1,2]}}
	]`)

	out, err := execute(t, "score", txs, "--model", artifact)
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 3)
	assert.Equal(t, "model", lines[0]["explain"])
	assert.InDelta(t, 0.0, lines[0]["score"], 1e-12)
	assert.InDelta(t, 1.0, lines[1]["score"], 1e-12)
	assert.Equal(t, true, lines[1]["is_fraud"])
	assert.Contains(t, lines[2]["error"], "expecting 1 features")
}

func TestScore_ModelAndServerAreExclusive(t *testing.T) {
	txs := writeFile(t, t.TempDir(), "txs.json", `[]`)
	_, err := execute(t, "score", txs, "--model", "m.json", "--server", "localhost:8088")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestScore_RejectsNonArray(t *testing.T) {
	txs := writeFile(t, t.TempDir(), "txs.json", `{"transaction_id":"a"}`)
	_, err := execute(t, "score", txs)
	assert.ErrorContains(t, err, "expected a JSON array")
}

func TestCerts(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "certs", "--out", dir, "--host", "fraud-analyzer.local")
	require.NoError(t, err)
	assert.Contains(t, out, "GRPC_TLS_CERT_FILE="+filepath.Join(dir, tlsutil.ServerFile))

	for _, name := range []string{tlsutil.CAFile, tlsutil.CAKeyFile, tlsutil.ServerFile, tlsutil.ServerKeyFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	_, err = tlsutil.ServerCredentials(filepath.Join(dir, tlsutil.ServerFile), filepath.Join(dir, tlsutil.ServerKeyFile))
	assert.NoError(t, err)
}
