package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-finch/internal/log"
	"github.com/teslashibe/go-finch/pkg/finch"
	"github.com/teslashibe/go-finch/pkg/render"
)

type stubRasterizer struct {
	err error
}

func (r stubRasterizer) PNG(render.Artifact) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("\x89PNG"), nil
}

func get(t *testing.T, s *Server, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// drawSquare draws a square on a fresh robot wired to s.
func drawSquare(t *testing.T, s *Server) *finch.Robot {
	t.Helper()
	r := finch.New(finch.WithDisplay(s), finch.WithLogger(log.Nop()))
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Forward(10))
		require.NoError(t, r.TurnLeft(90))
	}
	require.NoError(t, r.Show(context.Background()))
	return r
}

func TestServer_BeforeFirstDrawing(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))

	for _, target := range []string{"/api/artifact", "/drawing.svg"} {
		resp, _ := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, target)
	}

	resp, body := get(t, s, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Waiting for a drawing")
}

func TestServer_ShowUpdatesEndpoints(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	r := drawSquare(t, s)

	resp, body := get(t, s, "/api/artifact")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u Update
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, uint64(1), u.Version)
	assert.Equal(t, r.ID(), u.Artifact.RobotID)
	assert.Len(t, u.Artifact.Segments, 4)
	assert.True(t, u.Artifact.PenDown)

	resp, body = get(t, s, "/drawing.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, render.MIMESVG, resp.Header.Get("Content-Type"))
	assert.Equal(t, string(render.SVG(r.Render())), string(body))

	_, body = get(t, s, "/")
	assert.Contains(t, string(body), "<svg")
}

func TestServer_VersionIncrements(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	r := drawSquare(t, s)
	require.NoError(t, r.Forward(5))
	require.NoError(t, r.Show(context.Background()))

	u := s.Current()
	require.NotNil(t, u)
	assert.Equal(t, uint64(2), u.Version)
	assert.Len(t, u.Artifact.Segments, 5)

	// The hub retains the latest update for late subscribers.
	last := s.hub.Last()
	require.NotNil(t, last)
	var pushed Update
	require.NoError(t, json.Unmarshal(last.Data, &pushed))
	assert.Equal(t, uint64(2), pushed.Version)
}

func TestServer_ConcurrentShowsBroadcastInOrder(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	a := finch.New(finch.WithLogger(log.Nop())).Render()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Show(context.Background(), a))
		}()
	}
	wg.Wait()

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, uint64(20), cur.Version)

	last := s.hub.Last()
	require.NotNil(t, last)
	var pushed Update
	require.NoError(t, json.Unmarshal(last.Data, &pushed))
	assert.Equal(t, cur.Version, pushed.Version)
}

func TestServer_ShowCancelled(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Show(ctx, render.Artifact{}), context.Canceled)
	assert.Nil(t, s.Current())
}

func TestServer_PNG(t *testing.T) {
	t.Run("no rasterizer", func(t *testing.T) {
		s := NewServer("0", WithLogger(log.Nop()))
		drawSquare(t, s)
		resp, body := get(t, s, "/drawing.png")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, string(body), render.ErrNoRasterizer.Error())
	})

	t.Run("with rasterizer", func(t *testing.T) {
		s := NewServer("0", WithLogger(log.Nop()), WithRasterizer(stubRasterizer{}))
		drawSquare(t, s)
		resp, body := get(t, s, "/drawing.png")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, render.MIMEPNG, resp.Header.Get("Content-Type"))
		assert.Equal(t, []byte("\x89PNG"), body)
	})

	t.Run("rasterizer fails", func(t *testing.T) {
		s := NewServer("0", WithLogger(log.Nop()), WithRasterizer(stubRasterizer{err: errors.New("no opencv")}))
		drawSquare(t, s)
		resp, _ := get(t, s, "/drawing.png")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestServer_WebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	resp, _ := get(t, s, "/ws/artifact")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestServer_SVGConditionalGet(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	drawSquare(t, s)

	resp, _ := get(t, s, "/drawing.svg")
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, s.Current().ETag, etag)

	req := httptest.NewRequest(http.MethodGet, "/drawing.svg", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	// A different drawing gets a different tag.
	r := drawSquare(t, s)
	require.NoError(t, r.Forward(1))
	require.NoError(t, r.Show(context.Background()))
	assert.NotEqual(t, etag, s.Current().ETag)
}

func TestServer_Metrics(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()), WithRasterizer(stubRasterizer{}))
	drawSquare(t, s)
	get(t, s, "/drawing.png")

	resp, body := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, "finch_viewer_updates_total 1")
	assert.Contains(t, text, "finch_viewer_segments 4")
	assert.Contains(t, text, "finch_viewer_drawn_segments 4")
	assert.Contains(t, text, `finch_viewer_png_renders_total{status="ok"} 1`)
	assert.Contains(t, text, "finch_viewer_clients 0")
}

func TestServer_WebSocketPushesUpdates(t *testing.T) {
	s := NewServer("0", WithLogger(log.Nop()))
	r := drawSquare(t, s)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/artifact", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Update {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var u Update
		require.NoError(t, json.Unmarshal(data, &u))
		return u
	}

	// The current drawing is replayed on connect.
	u := read()
	assert.Equal(t, uint64(1), u.Version)
	assert.Len(t, u.Artifact.Segments, 4)

	require.NoError(t, r.Forward(5))
	require.NoError(t, r.Show(context.Background()))
	u = read()
	assert.Equal(t, uint64(2), u.Version)
	assert.Len(t, u.Artifact.Segments, 5)
}
