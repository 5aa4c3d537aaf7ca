package viewer

import (
	"snapviz/common"
	"snapviz/render"
	"snapviz/scene"
	"snapviz/state"
)

// RenderSource returns a FrameSource that renders current (with history as
// the motion path) through one SoftwareRenderer into a RecordingSink. The
// renderer handle is reused across calls. Served frames carry the
// snapshot's frame id.
func RenderSource(current state.Snapshot, history []state.Snapshot, vp render.Viewport, log common.Logger) FrameSource {
	sink := &RecordingSink{}
	r := render.NewSoftwareRenderer(sink)
	return func(cam scene.Camera) (*FrameMsg, error) {
		info := render.FrameInfo{
			Viewport:   vp,
			Camera:     cam,
			Current:    current,
			PathStates: history,
		}
		if err := render.RenderLogged(r, info, log); err != nil {
			return nil, err
		}
		msg := sink.Frame()
		msg.Frame = current.Frame
		return msg, nil
	}
}
