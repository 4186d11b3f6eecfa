// Package capture stores page diagnostics when a wait times out.
package capture

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/types"
)

// PageSource is implemented by searches that can dump their current page.
type PageSource interface {
	PageSource(ctx context.Context) (string, error)
	// Screenshot returns a PNG, or an UNSUPPORTED error.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Dir writes captures into a directory as <uuid>.html and <uuid>.png.
type Dir struct {
	path        string
	source      PageSource
	screenshots bool
	logger      *zap.Logger
	newID       func() string
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dir) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithScreenshots toggles screenshot capture. Enabled by default.
func WithScreenshots(enabled bool) Option {
	return func(d *Dir) { d.screenshots = enabled }
}

// NewDir creates a capturer writing below path.
func NewDir(path string, source PageSource, opts ...Option) *Dir {
	d := &Dir{
		path:        path,
		source:      source,
		screenshots: true,
		logger:      zap.NewNop(),
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("component", "capture"), zap.String("dir", path))
	return d
}

// Path returns the capture directory.
func (d *Dir) Path() string { return d.path }

// Capture writes the page source and, when supported, a screenshot. It
// returns the paths written so far even when a later step fails.
func (d *Dir) Capture(ctx context.Context, reason string) ([]string, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, types.NewError(types.ErrCaptureFailed, "failed to create capture directory").WithCause(err)
	}
	id := d.newID()

	html, err := d.source.PageSource(ctx)
	if err != nil {
		return nil, types.NewError(types.ErrCaptureFailed, "failed to read page source").WithCause(err)
	}
	htmlPath := filepath.Join(d.path, id+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, types.NewError(types.ErrCaptureFailed, "failed to write page source").WithCause(err)
	}
	paths := []string{htmlPath}

	if d.screenshots {
		png, err := d.source.Screenshot(ctx)
		switch {
		case types.HasCode(err, types.ErrUnsupported):
			d.logger.Debug("screenshot not supported by driver")
		case err != nil:
			return paths, types.NewError(types.ErrCaptureFailed, "failed to take screenshot").WithCause(err)
		default:
			pngPath := filepath.Join(d.path, id+".png")
			if err := os.WriteFile(pngPath, png, 0o644); err != nil {
				return paths, types.NewError(types.ErrCaptureFailed, "failed to write screenshot").WithCause(err)
			}
			paths = append(paths, pngPath)
		}
	}

	d.logger.Info("page captured", zap.String("id", id), zap.String("reason", reason), zap.Int("files", len(paths)))
	return paths, nil
}
