// Package printer writes draw calls as text, one line per call. It is the
// reference sink for golden-output comparison and for the CLI.
package printer

import (
	"fmt"
	"io"
	"strings"

	"snapviz/geom"
	"snapviz/render"
	"snapviz/scene"
)

// Sink is a render.DrawSink writing one formatted line per draw call.
// Frames are numbered from zero across the sink's lifetime.
type Sink struct {
	W io.Writer

	frame int
	calls int
	err   error
}

// New creates a sink writing to w.
func New(w io.Writer) *Sink { return &Sink{W: w} }

func (s *Sink) BeginFrame(vp render.Viewport) {
	s.calls = 0
	s.printf("Frame:%d; Viewport:[%d,%d %dx%d];", s.frame, vp.X, vp.Y, vp.Width, vp.Height)
}

func (s *Sink) Line(a, b geom.Vec3) { s.call("LINE", a, b) }

func (s *Sink) LineLoop(a, b, c geom.Vec3) { s.call("LINE_LOOP", a, b, c) }

func (s *Sink) Triangle(a, b, c geom.Vec3) { s.call("TRIANGLE", a, b, c) }

func (s *Sink) EndFrame() {
	s.printf("End:%d; Calls:%d;", s.frame, s.calls)
	s.frame++
}

// Err returns the first write error encountered, if any. Draw calls after a
// write error are discarded.
func (s *Sink) Err() error { return s.err }

func (s *Sink) call(name string, pts ...geom.Vec3) {
	s.printf("Idx:%d; %s : %s;", s.calls, name, formatPoints(pts))
	s.calls++
}

func (s *Sink) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.W, format+"\n", args...)
}

func formatPoints(pts []geom.Vec3) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = FormatPoint(p)
	}
	return strings.Join(parts, " ")
}

// FormatPoint formats one position the way draw-call lines do.
func FormatPoint(p geom.Vec3) string {
	return fmt.Sprintf("(%.2f,%.2f,%.2f)", p.X, p.Y, p.Z)
}

// FormatSceneSummary formats a one-line overview of a built scene.
func FormatSceneSummary(sc *scene.Scene) string {
	kinds := make(map[scene.SurfaceKind]int)
	for _, s := range sc.Surfaces {
		kinds[s.Kind]++
	}
	return fmt.Sprintf("Camera:%s; Surfaces:%d (floor:%d ceiling:%d wall:%d); Objects:%d; Paths:%d;",
		sc.Camera.Mode,
		len(sc.Surfaces),
		kinds[scene.Floor],
		kinds[scene.Ceiling],
		kinds[scene.WallXProj]+kinds[scene.WallZProj],
		len(sc.Objects),
		len(sc.ObjectPaths))
}
