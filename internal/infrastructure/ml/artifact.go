// Package ml decodes model artifacts into classifiers and loads them at startup.
package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"

	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
)

// FormatV1 is the only artifact envelope version understood by this package.
const FormatV1 = "fraudshield.model/v1"

var (
	// ErrUnknownKind is returned for an artifact whose kind has no decoder.
	ErrUnknownKind = errors.New("unknown model kind")
	// ErrUnsupportedFormat is returned for an envelope other than FormatV1.
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
)

// Artifact is the serialized envelope around a classifier's parameters.
type Artifact struct {
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Format      string            `json:"format" yaml:"format"`
	Kind        string            `json:"kind" yaml:"kind"`
	Params      json.RawMessage   `json:"params" yaml:"-"`
	NumFeatures int               `json:"n_features" yaml:"n_features"`
}

type decoderFunc func(nFeatures int, params json.RawMessage) (port.Classifier, error)

var decoders = map[string]decoderFunc{
	KindLogisticRegression: decodeLogistic,
	KindRandomForest:       decodeForest,
	KindLinearSVC:          decodeLinearSVC,
}

// Kinds lists the artifact kinds Decode understands.
func Kinds() []string {
	kinds := make([]string, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Decode parses a plain or gzip-compressed artifact and builds its classifier.
func Decode(data []byte) (port.Classifier, Artifact, error) {
	if IsGzip(data) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, Artifact{}, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, Artifact{}, fmt.Errorf("decompress artifact: %w", err)
		}
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, Artifact{}, fmt.Errorf("parse artifact envelope: %w", err)
	}

	c, err := Build(a)
	if err != nil {
		return nil, a, err
	}
	return c, a, nil
}

// Build validates the envelope and constructs its classifier.
func Build(a Artifact) (port.Classifier, error) {
	if a.Format != FormatV1 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, a.Format)
	}
	decode, ok := decoders[a.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	if a.NumFeatures < 1 {
		return nil, fmt.Errorf("%s: n_features must be positive, got %d", a.Kind, a.NumFeatures)
	}
	if len(a.Params) == 0 {
		return nil, fmt.Errorf("%s: params are missing", a.Kind)
	}

	c, err := decode(a.NumFeatures, a.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Kind, err)
	}
	return c, nil
}

// Encode serializes a, gzip-compressing it when compress is set. The artifact
// is validated with Build first so that nothing unloadable is written.
func Encode(a Artifact, compress bool) ([]byte, error) {
	if a.Format == "" {
		a.Format = FormatV1
	}
	if _, err := Build(a); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	if !compress {
		return raw, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func checkShape(kind string, want int, x []float64) error {
	if len(x) != want {
		return fmt.Errorf("X has %d features, but %s is expecting %d features as input", len(x), kind, want)
	}
	return nil
}

func dot(w, x []float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}
