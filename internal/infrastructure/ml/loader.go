package ml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/storage"
)

// MaxArtifactSize bounds how much of an artifact is read into memory.
const MaxArtifactSize = 256 << 20

// Read fetches and decodes the artifact at location. A missing artifact is
// reported as storage.ErrNotFound.
func Read(ctx context.Context, src storage.Opener, location string) (port.Classifier, Artifact, error) {
	rc, err := src.Open(ctx, location)
	if err != nil {
		return nil, Artifact{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxArtifactSize+1))
	if err != nil {
		return nil, Artifact{}, fmt.Errorf("read %s: %w", location, err)
	}
	if len(data) > MaxArtifactSize {
		return nil, Artifact{}, fmt.Errorf("%s exceeds %d bytes", location, MaxArtifactSize)
	}

	c, a, err := Decode(data)
	if err != nil {
		return nil, a, fmt.Errorf("decode %s: %w", location, err)
	}
	return c, a, nil
}

// Describe builds the ArtifactInfo recorded on a model handle.
func Describe(location string, a Artifact, c port.Classifier) model.ArtifactInfo {
	return model.ArtifactInfo{
		Source:      location,
		Kind:        c.Kind(),
		Format:      a.Format,
		Capability:  model.CapabilityOf(c),
		NumFeatures: c.NumFeatures(),
		Metadata:    a.Metadata,
		LoadedAt:    time.Now().UTC(),
	}
}

// Loader builds the process-wide model handle at startup.
type Loader struct {
	source  storage.Opener
	logger  *slog.Logger
	timeout time.Duration
}

// NewLoader creates a Loader. A zero timeout means no deadline beyond ctx.
func NewLoader(source storage.Opener, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{source: source, timeout: timeout, logger: logger}
}

// Load never fails: a missing artifact is logged at info level, any other
// problem at error level, and both yield the absent handle.
func (l *Loader) Load(ctx context.Context, location string) *model.ModelHandle {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	c, a, err := Read(ctx, l.source, location)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		l.logger.InfoContext(ctx, "no model artifact found, serving heuristic scores",
			slog.String("model_path", location),
		)
		return model.AbsentModel()
	case err != nil:
		l.logger.ErrorContext(ctx, "failed to load model artifact, serving heuristic scores",
			slog.String("model_path", location),
			slog.String("error", err.Error()),
		)
		return model.AbsentModel()
	}

	handle := model.NewModelHandle(c, Describe(location, a, c))
	info := handle.Info()
	l.logger.InfoContext(ctx, "model artifact loaded",
		slog.String("model_path", location),
		slog.String("kind", info.Kind),
		slog.String("capability", info.Capability),
		slog.Int("n_features", info.NumFeatures),
	)
	return handle
}
