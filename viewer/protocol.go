// Package viewer streams rendered frames to a websocket client as JSON
// draw-call messages and accepts camera-control messages back.
package viewer

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"snapviz/geom"
	"snapviz/scene"
)

// Call is one draw call of a frame message.
type Call struct {
	Kind   string       `json:"kind"` // LINE, LINE_LOOP or TRIANGLE
	Points [][3]float32 `json:"points"`
}

// FrameMsg is one rendered frame pushed to the client.
type FrameMsg struct {
	Type     string `json:"type"` // always "FRAME"
	Frame    int    `json:"frame"`
	Viewport [4]int `json:"viewport"` // x, y, width, height
	Calls    []Call `json:"calls"`
}

// ErrorMsg reports a failed render to the client.
type ErrorMsg struct {
	Type  string `json:"type"` // always "ERROR"
	Error string `json:"error"`
	Fatal bool   `json:"fatal"`
}

// CameraMsg is the client's camera-control message.
type CameraMsg struct {
	Type  string     `json:"type"` // always "CAMERA"
	Mode  string     `json:"mode"` // ROTATE or BIRDS_EYE
	Pos   [3]float32 `json:"pos"`
	Pitch float32    `json:"pitch,omitempty"`
	Yaw   float32    `json:"yaw,omitempty"`
	FovY  float32    `json:"fov_y,omitempty"`
	SpanY float32    `json:"span_y,omitempty"`
}

const cameraSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "mode", "pos"],
  "properties": {
    "type": {"const": "CAMERA"},
    "mode": {"enum": ["ROTATE", "BIRDS_EYE"]},
    "pos": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
    "pitch": {"type": "number"},
    "yaw": {"type": "number"},
    "fov_y": {"type": "number", "exclusiveMinimum": 0},
    "span_y": {"type": "number", "exclusiveMinimum": 0}
  },
  "allOf": [
    {
      "if": {"properties": {"mode": {"const": "ROTATE"}}},
      "then": {"required": ["pitch", "yaw", "fov_y"]}
    },
    {
      "if": {"properties": {"mode": {"const": "BIRDS_EYE"}}},
      "then": {"required": ["span_y"]}
    }
  ],
  "additionalProperties": false
}`

var cameraSchema = jsonschema.MustCompileString("camera.schema.json", cameraSchemaJSON)

// ParseCameraMessage validates a raw client message against the camera
// schema and converts it into a scene camera.
func ParseCameraMessage(raw []byte) (scene.Camera, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return scene.Camera{}, fmt.Errorf("viewer: camera message: %w", err)
	}
	if err := cameraSchema.Validate(generic); err != nil {
		return scene.Camera{}, fmt.Errorf("viewer: camera message: %w", err)
	}

	var msg CameraMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return scene.Camera{}, fmt.Errorf("viewer: camera message: %w", err)
	}
	cam := scene.Camera{
		Pos:   geom.Vec3{X: msg.Pos[0], Y: msg.Pos[1], Z: msg.Pos[2]},
		Pitch: msg.Pitch,
		Yaw:   msg.Yaw,
		FovY:  msg.FovY,
		SpanY: msg.SpanY,
	}
	switch msg.Mode {
	case "ROTATE":
		cam.Mode = scene.Rotate
	case "BIRDS_EYE":
		cam.Mode = scene.BirdsEye
	}
	return cam, nil
}
