package viewer

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"snapviz/common"
	"snapviz/geom"
	"snapviz/scene"
)

// FrameSource renders one frame under the given camera.
type FrameSource func(cam scene.Camera) (*FrameMsg, error)

// DefaultCamera is the view served before the client sends a camera
// message.
var DefaultCamera = scene.Camera{
	Mode:  scene.BirdsEye,
	Pos:   geom.Vec3{Y: 5000},
	SpanY: 8000,
}

// Server pushes rendered frames to one websocket client at a time. A frame
// is sent on connect and after every accepted camera message.
type Server struct {
	Source FrameSource
	Log    common.Logger

	upgrader websocket.Upgrader
	busy     atomic.Bool
}

// NewServer creates a server rendering frames through source.
func NewServer(source FrameSource, log common.Logger) *Server {
	if log == nil {
		log = common.NewNoOpLogger()
	}
	return &Server{
		Source: source,
		Log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.busy.CompareAndSwap(false, true) {
			http.Error(rw, "viewer busy", http.StatusConflict)
			return
		}
		defer s.busy.Store(false)

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		cam := DefaultCamera
		if !s.push(conn, cam) {
			return
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			next, err := ParseCameraMessage(msg)
			if err != nil {
				s.Log.Warning(err.Error())
				if werr := conn.WriteJSON(ErrorMsg{Type: "ERROR", Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
			cam = next
			if !s.push(conn, cam) {
				return
			}
		}
	}
}

// push renders and sends one frame, reporting whether the connection is
// still usable. A format error in the snapshot is fatal for the session.
func (s *Server) push(conn *websocket.Conn, cam scene.Camera) bool {
	frame, err := s.Source(cam)
	if err != nil {
		s.Log.Error(err)
		fatal := common.IsFormatError(err)
		_ = conn.WriteJSON(ErrorMsg{Type: "ERROR", Error: err.Error(), Fatal: fatal})
		if fatal {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot format error"),
				time.Now().Add(time.Second))
			return false
		}
		return true
	}
	return conn.WriteJSON(frame) == nil
}
