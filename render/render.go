// Package render ties scene construction, camera resolution and
// display-list interpretation together into complete frame renders.
package render

import (
	"errors"
	"fmt"
	"math"

	"snapviz/common"
	"snapviz/dlist"
	"snapviz/geom"
	"snapviz/scene"
	"snapviz/state"
)

// Viewport is the pixel rectangle a frame is rendered into.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Aspect returns the viewport's width/height ratio.
func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Renderer is the transform-holding handle frames are drawn through. It is
// an opaque mutable resource: it keeps the last computed view and
// projection matrices between calls, and must not be used from more than
// one goroutine at a time.
type Renderer interface {
	// BeginFrame opens a frame; every draw call until EndFrame belongs to
	// it. The frame orchestration owns the bracket so the display-list
	// overlay lands inside the same frame as the static geometry.
	BeginFrame(vp Viewport)
	EndFrame()

	// Render draws the scene's static geometry under the scene's camera.
	Render(vp Viewport, sc *scene.Scene)

	// BuildTransforms recomputes the view and projection matrices for the
	// scene's camera without drawing anything.
	BuildTransforms(vp Viewport, sc *scene.Scene)

	// ViewMatrix and ProjMatrix return the matrices of the most recent
	// Render or BuildTransforms call.
	ViewMatrix() geom.Mat4
	ProjMatrix() geom.Mat4

	// PushMatrix composes m onto the model transform stack; PopMatrix
	// restores the previous top.
	PushMatrix(m geom.Mat4)
	PopMatrix()

	// LineLoop draws a closed loop through three points under the current
	// model transform stack.
	LineLoop(a, b, c geom.Vec3)
}

// FrameInfo carries the inputs of one frame render.
type FrameInfo struct {
	Viewport   Viewport
	Camera     scene.Camera
	Current    state.Snapshot
	PathStates []state.Snapshot
}

const fovYDefault = 45 * math.Pi / 180

// SnapshotCamera derives a rotate camera from the current snapshot's live
// camera-control state. Pitch and yaw are stored as s16 fixed-point angles
// scaled by pi/0x8000; the field of view is fixed at 45 degrees.
func SnapshotCamera(st state.Snapshot) (scene.Camera, error) {
	gc, err := st.GameCamera()
	if err != nil {
		return scene.Camera{}, err
	}
	const angleScale = math.Pi / 0x8000
	return scene.Camera{
		Mode:  scene.Rotate,
		Pos:   gc.Pos,
		Pitch: float32(gc.Pitch) * angleScale,
		Yaw:   float32(gc.Yaw) * angleScale,
		FovY:  fovYDefault,
	}, nil
}

// Render draws one complete frame through r: static scene geometry under
// the caller's camera, then the tracked character's live display lists
// overlaid in the right place relative to the game's own camera.
//
// Malformed FrameInfo fields come back as ordinary errors and the renderer
// stays usable. A *common.FormatError means the snapshot itself is
// inconsistent and the caller must stop using the data.
func Render(r Renderer, info FrameInfo) error {
	return RenderLogged(r, info, nil)
}

// RenderLogged is Render with diagnostics routed through log.
func RenderLogged(r Renderer, info FrameInfo, log common.Logger) error {
	if log == nil {
		log = common.NewNoOpLogger()
	}
	if r == nil {
		return errors.New("render: nil renderer")
	}
	if err := checkFrame(info); err != nil {
		return err
	}

	sc, err := scene.NewBuilder(log).Build(info.Current, info.PathStates, info.Camera)
	if err != nil {
		return err
	}

	// One frame spans the static geometry and the overlay; a call that
	// fails midway still closes the frame it opened.
	r.BeginFrame(info.Viewport)
	defer r.EndFrame()
	r.Render(info.Viewport, sc)

	gameCam, err := SnapshotCamera(info.Current)
	if err != nil {
		return err
	}

	// The first pass exists only to capture the game camera's view matrix;
	// its inverse places the live-model overlay in the same space the game
	// rendered it in. The second pass restores the caller's camera for the
	// displayed view.
	sc.Camera = gameCam
	r.BuildTransforms(info.Viewport, sc)
	gameView := r.ViewMatrix()

	sc.Camera = info.Camera
	r.BuildTransforms(info.Viewport, sc)

	return overlayTracked(r, info.Current, gameView, log)
}

func checkFrame(info FrameInfo) error {
	if err := checkSnapshot(info.Current); err != nil {
		return fmt.Errorf("render: current snapshot: %w", err)
	}
	for i, st := range info.PathStates {
		if err := checkSnapshot(st); err != nil {
			return fmt.Errorf("render: path snapshot %d: %w", i, err)
		}
	}
	return nil
}

func checkSnapshot(st state.Snapshot) error {
	if st.Ref == nil || st.Data == nil {
		return errors.New("missing memory image")
	}
	if st.Layout == nil {
		return errors.New("missing layout")
	}
	return st.Layout.Validate()
}

// overlayTracked walks every display layer for nodes belonging to the
// tracked character object and interprets their display lists, each under
// inverse(game view) x the node's fixed-point transform.
func overlayTracked(r Renderer, st state.Snapshot, gameView geom.Mat4, log common.Logger) error {
	tracked, err := st.TrackedObject()
	if err != nil {
		return err
	}
	if tracked == 0 {
		log.Debug("render: no tracked object, skipping overlay")
		return nil
	}

	invGame := gameView.Inverse()
	interp := dlist.New(log)

	for layer := 0; layer < st.Layout.Display.LayerCount; layer++ {
		head, err := st.DisplayLayerHead(layer)
		if err != nil {
			return err
		}
		for addr := head; addr != 0; {
			node, err := st.DisplayNode(addr)
			if err != nil {
				return err
			}
			if node.Object == tracked && node.Transform != 0 && node.List != 0 {
				model, err := st.FixedMatrix(node.Transform)
				if err != nil {
					return err
				}
				r.PushMatrix(invGame.Mul(model))
				err = interp.Run(st, node.List, r)
				r.PopMatrix()
				if err != nil {
					return err
				}
			}
			addr = node.Next
		}
	}
	return nil
}
