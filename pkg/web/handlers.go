package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-finch/pkg/hub"
	"github.com/teslashibe/go-finch/pkg/render"
)

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Finch Viewer</title>
<style>
body { font-family: sans-serif; margin: 2em; }
#drawing { border: 1px solid #ccc; display: inline-block; }
</style>
</head>
<body>
<h1>Finch Viewer</h1>
<div id="drawing">{{DRAWING}}</div>
<p id="status"></p>
<script>
const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + "/ws/artifact");
ws.onmessage = (ev) => {
  const u = JSON.parse(ev.data);
  document.getElementById("drawing").innerHTML = u.svg;
  document.getElementById("status").textContent =
    "version " + u.version + ", " + u.artifact.segments.length + " segments";
};
ws.onclose = () => { document.getElementById("status").textContent = "disconnected"; };
</script>
</body>
</html>
`

func noDrawing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "nothing has been drawn yet",
	})
}

// handleIndex serves the viewer page with the current drawing inlined.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	drawing := "<p>Waiting for a drawing...</p>"
	if u := s.Current(); u != nil {
		drawing = u.SVG
	}
	c.Type("html")
	return c.SendString(strings.Replace(indexPage, "{{DRAWING}}", drawing, 1))
}

// handleArtifact returns the current drawing as JSON
func (s *Server) handleArtifact(c *fiber.Ctx) error {
	u := s.Current()
	if u == nil {
		return noDrawing(c)
	}
	return c.JSON(u)
}

func (s *Server) handleSVG(c *fiber.Ctx) error {
	u := s.Current()
	if u == nil {
		return noDrawing(c)
	}
	c.Set(fiber.HeaderETag, u.ETag)
	if c.Get(fiber.HeaderIfNoneMatch) == u.ETag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set(fiber.HeaderContentType, render.MIMESVG)
	return c.SendString(u.SVG)
}

func (s *Server) handlePNG(c *fiber.Ctx) error {
	if s.rasterizer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": render.ErrNoRasterizer.Error(),
		})
	}
	u := s.Current()
	if u == nil {
		return noDrawing(c)
	}
	png, err := s.rasterizer.PNG(u.Artifact)
	if err != nil {
		s.metrics.pngs.WithLabelValues("error").Inc()
		s.logger.Warn("PNG rendering failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	s.metrics.pngs.WithLabelValues("ok").Inc()
	c.Set(fiber.HeaderContentType, render.MIMEPNG)
	return c.Send(png)
}

// handleArtifactWS streams drawing updates. The hub replays the current
// drawing on connect.
func (s *Server) handleArtifactWS(c *websocket.Conn) {
	hub.NewClient(s.hub, c).Run()
}
