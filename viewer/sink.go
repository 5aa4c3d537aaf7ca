package viewer

import (
	"snapviz/geom"
	"snapviz/render"
)

// RecordingSink is a render.DrawSink that accumulates draw calls into a
// FrameMsg. One sink records one frame at a time; Frame returns the most
// recently completed one.
type RecordingSink struct {
	cur  *FrameMsg
	done *FrameMsg
	next int
}

func (s *RecordingSink) BeginFrame(vp render.Viewport) {
	s.cur = &FrameMsg{
		Type:     "FRAME",
		Frame:    s.next,
		Viewport: [4]int{vp.X, vp.Y, vp.Width, vp.Height},
	}
}

func (s *RecordingSink) Line(a, b geom.Vec3) { s.record("LINE", a, b) }

func (s *RecordingSink) LineLoop(a, b, c geom.Vec3) { s.record("LINE_LOOP", a, b, c) }

func (s *RecordingSink) Triangle(a, b, c geom.Vec3) { s.record("TRIANGLE", a, b, c) }

func (s *RecordingSink) EndFrame() {
	if s.cur == nil {
		return
	}
	s.done = s.cur
	s.cur = nil
	s.next++
}

// Frame returns the last completed frame, or nil before the first EndFrame.
func (s *RecordingSink) Frame() *FrameMsg { return s.done }

func (s *RecordingSink) record(kind string, pts ...geom.Vec3) {
	if s.cur == nil {
		return
	}
	call := Call{Kind: kind, Points: make([][3]float32, len(pts))}
	for i, p := range pts {
		call.Points[i] = [3]float32{p.X, p.Y, p.Z}
	}
	s.cur.Calls = append(s.cur.Calls, call)
}
