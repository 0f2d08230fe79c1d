package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-finch/internal/config"
	"github.com/teslashibe/go-finch/pkg/program"
	"github.com/teslashibe/go-finch/pkg/render"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("FINCH_VIEWER_PORT", "9000")

	opts, file, err := parseFlags("render", []string{"-o", "out.png", "-pen-up", "-no-png", "prog.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "prog.yaml", file)
	assert.Equal(t, "out.png", opts.output)
	assert.Equal(t, "9000", opts.port)
	assert.Equal(t, config.DefaultWheelbase, opts.wheelbase)
	assert.True(t, opts.penUp)
	assert.True(t, opts.noPNG)
	assert.Nil(t, opts.rasterizer())
}

func TestParseFlags_Errors(t *testing.T) {
	_, _, err := parseFlags("draw", []string{"prog.yaml"})
	assert.Error(t, err)

	_, _, err = parseFlags("run", nil)
	assert.Error(t, err)

	_, _, err = parseFlags("run", []string{"a.yaml", "b.yaml"})
	assert.Error(t, err)
}

func TestExamplePrograms(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "programs", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			prog, err := program.Load(file)
			require.NoError(t, err)

			var shown render.Artifact
			display := render.DisplayFunc(func(_ context.Context, a render.Artifact) error {
				shown = a
				return nil
			})
			r, err := execute(context.Background(), options{noPNG: true, wheelbase: config.DefaultWheelbase}, prog, display)
			require.NoError(t, err)
			assert.Positive(t, r.SegmentCount())
			assert.Equal(t, r.SegmentCount(), len(shown.Segments))
		})
	}
}

func TestRenderCmd_WritesSVG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "square.png")
	opts := options{output: out, noPNG: true, wheelbase: config.DefaultWheelbase}

	require.NoError(t, renderCmd(context.Background(), opts, filepath.Join("..", "..", "programs", "square.yaml")))

	data, err := os.ReadFile(filepath.Join(dir, "square.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.NoFileExists(t, out)
}
