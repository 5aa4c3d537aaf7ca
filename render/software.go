package render

import (
	"math"

	"snapviz/geom"
	"snapviz/scene"
)

// DrawSink receives the draw calls a SoftwareRenderer produces. All
// coordinates are world-space; sinks that need screen coordinates can apply
// the renderer's view and projection matrices themselves.
type DrawSink interface {
	BeginFrame(vp Viewport)
	Line(a, b geom.Vec3)
	LineLoop(a, b, c geom.Vec3)
	Triangle(a, b, c geom.Vec3)
	EndFrame()
}

// Near and far clip distances, sized for level geometry coordinates.
const (
	clipNear = 10
	clipFar  = 20000
)

const hitboxSegments = 16

// SoftwareRenderer implements Renderer without a graphics context by
// forwarding draw calls to a DrawSink. A nil sink computes transforms but
// draws nothing.
type SoftwareRenderer struct {
	Sink DrawSink

	view  geom.Mat4
	proj  geom.Mat4
	stack []geom.Mat4
}

// NewSoftwareRenderer creates a renderer emitting to sink.
func NewSoftwareRenderer(sink DrawSink) *SoftwareRenderer {
	return &SoftwareRenderer{
		Sink: sink,
		view: geom.Identity(),
		proj: geom.Identity(),
	}
}

func (r *SoftwareRenderer) ViewMatrix() geom.Mat4 { return r.view }
func (r *SoftwareRenderer) ProjMatrix() geom.Mat4 { return r.proj }

// BeginFrame opens a sink frame.
func (r *SoftwareRenderer) BeginFrame(vp Viewport) {
	if r.Sink != nil {
		r.Sink.BeginFrame(vp)
	}
}

// EndFrame closes the sink frame opened by BeginFrame.
func (r *SoftwareRenderer) EndFrame() {
	if r.Sink != nil {
		r.Sink.EndFrame()
	}
}

// BuildTransforms recomputes the view and projection matrices for the
// scene's camera. A rotate camera looks along its pitch/yaw direction with
// a perspective projection; a birds-eye camera looks straight down with an
// orthographic projection spanning SpanY world units vertically.
func (r *SoftwareRenderer) BuildTransforms(vp Viewport, sc *scene.Scene) {
	cam := sc.Camera
	switch cam.Mode {
	case scene.Rotate:
		dir := geom.Vec3{
			X: cosf(cam.Pitch) * sinf(cam.Yaw),
			Y: sinf(cam.Pitch),
			Z: cosf(cam.Pitch) * cosf(cam.Yaw),
		}
		r.view = geom.LookAt(cam.Pos, cam.Pos.Add(dir), geom.Vec3{Y: 1})
		r.proj = geom.Perspective(cam.FovY, vp.Aspect(), clipNear, clipFar)
	case scene.BirdsEye:
		// Straight down, -Z (north) at the top of the view.
		r.view = geom.LookAt(cam.Pos, cam.Pos.Sub(geom.Vec3{Y: 1}), geom.Vec3{Z: -1})
		spanX := cam.SpanY * vp.Aspect()
		r.proj = geom.Ortho(-spanX/2, spanX/2, -cam.SpanY/2, cam.SpanY/2, clipNear, clipFar)
	}
}

// Render draws the scene's static geometry: surfaces as filled triangles,
// entity hitboxes as wireframe cylinders, and motion paths as polylines
// with one segment per quarter step. It draws into whatever frame the
// caller has open; BeginFrame and EndFrame bracket it from outside.
func (r *SoftwareRenderer) Render(vp Viewport, sc *scene.Scene) {
	r.BuildTransforms(vp, sc)
	if r.Sink == nil {
		return
	}
	for _, s := range sc.Surfaces {
		r.Sink.Triangle(s.Verts[0], s.Verts[1], s.Verts[2])
	}
	for _, o := range sc.Objects {
		r.drawHitbox(o)
	}
	for _, p := range sc.ObjectPaths {
		r.drawPath(p)
	}
}

func (r *SoftwareRenderer) drawHitbox(o scene.Entity) {
	top := o.Pos.Add(geom.Vec3{Y: o.HitboxHeight})
	r.Sink.Line(o.Pos, top)
	if o.HitboxRadius <= 0 {
		return
	}
	step := 2 * math.Pi / hitboxSegments
	for i := 0; i < hitboxSegments; i++ {
		a0 := float32(i) * float32(step)
		a1 := float32(i+1) * float32(step)
		p0 := geom.Vec3{X: o.HitboxRadius * cosf(a0), Z: o.HitboxRadius * sinf(a0)}
		p1 := geom.Vec3{X: o.HitboxRadius * cosf(a1), Z: o.HitboxRadius * sinf(a1)}
		r.Sink.Line(o.Pos.Add(p0), o.Pos.Add(p1))
		r.Sink.Line(top.Add(p0), top.Add(p1))
	}
}

func (r *SoftwareRenderer) drawPath(p scene.ObjectPath) {
	for i := 1; i < len(p.Nodes); i++ {
		r.Sink.Line(p.Nodes[i-1].Pos, p.Nodes[i].Pos)
	}
	for _, n := range p.Nodes {
		for _, q := range n.QuarterSteps {
			r.Sink.Line(q.Intended, q.Result)
		}
	}
}

// PushMatrix composes m with the current top of the model transform stack
// and pushes the result.
func (r *SoftwareRenderer) PushMatrix(m geom.Mat4) {
	if n := len(r.stack); n > 0 {
		m = r.stack[n-1].Mul(m)
	}
	r.stack = append(r.stack, m)
}

// PopMatrix discards the top of the model transform stack.
func (r *SoftwareRenderer) PopMatrix() {
	if n := len(r.stack); n > 0 {
		r.stack = r.stack[:n-1]
	}
}

// LineLoop transforms the three points through the model stack and forwards
// them to the sink.
func (r *SoftwareRenderer) LineLoop(a, b, c geom.Vec3) {
	if n := len(r.stack); n > 0 {
		m := r.stack[n-1]
		a, b, c = m.MulPoint(a), m.MulPoint(b), m.MulPoint(c)
	}
	if r.Sink != nil {
		r.Sink.LineLoop(a, b, c)
	}
}

func sinf(x float32) float32 { return float32(math.Sin(float64(x))) }
func cosf(x float32) float32 { return float32(math.Cos(float64(x))) }
