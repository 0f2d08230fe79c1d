package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/teslashibe/go-finch/internal/config"
)

// FileDisplay writes each artifact it is shown to disk: an SVG next to the
// configured PNG path, and the PNG itself when a Rasterizer is set.
type FileDisplay struct {
	PNGPath    string
	Rasterizer Rasterizer
	Logger     *slog.Logger
}

// NewFileDisplay creates a file display writing to pngPath.
func NewFileDisplay(pngPath string, r Rasterizer, logger *slog.Logger) *FileDisplay {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileDisplay{PNGPath: pngPath, Rasterizer: r, Logger: logger}
}

// SVGPath returns the SVG file written alongside the PNG.
func (d *FileDisplay) SVGPath() string {
	return config.SVGPath(d.PNGPath)
}

// Show writes the artifact. The SVG is always written; a rasterizer failure
// is logged and does not fail the call.
func (d *FileDisplay) Show(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	svgPath := d.SVGPath()
	if err := os.WriteFile(svgPath, SVG(a), 0o644); err != nil {
		return fmt.Errorf("failed to write SVG: %w", err)
	}
	d.Logger.Info("drawing written", "file", svgPath, "segments", len(a.Segments))

	if d.Rasterizer == nil {
		return nil
	}
	png, err := d.Rasterizer.PNG(a)
	if err != nil {
		d.Logger.Warn("PNG rendering failed", "error", err)
		return nil
	}
	if err := os.WriteFile(d.PNGPath, png, 0o644); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	d.Logger.Info("drawing written", "file", d.PNGPath)
	return nil
}
