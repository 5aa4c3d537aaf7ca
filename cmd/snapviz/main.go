package main

import (
	"flag"
	"fmt"
	"os"

	"snapviz/common"
	"snapviz/printer"
	"snapviz/render"
	"snapviz/scene"
	"snapviz/snapfile"
)

func main() {
	dumpDir := flag.String("dump_dir", "", "Path to the snapshot dump directory")
	frame := flag.Int("frame", -1, "Frame id to render (default: last frame in the dump)")
	width := flag.Int("width", 640, "Viewport width")
	height := flag.Int("height", 480, "Viewport height")
	span := flag.Float64("birds_eye_span", 0, "Render from a birds-eye view spanning this many units (default: game camera)")
	verbose := flag.Bool("verbose", false, "Log diagnostics")

	flag.Parse()

	if *dumpDir == "" {
		fmt.Println("snapviz : Error: Missing directory string on -dump_dir option")
		os.Exit(1)
	}

	log := common.Logger(common.NewNoOpLogger())
	if *verbose {
		log = common.NewStdLogger(common.SeverityDebug)
	}

	dump, err := snapfile.Load(*dumpDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	snaps := dump.Snapshots()
	current := snaps[len(snaps)-1]
	if *frame >= 0 {
		var ok bool
		if current, ok = dump.Frame(*frame); !ok {
			fmt.Printf("Error: frame %d not in dump\n", *frame)
			os.Exit(1)
		}
	}

	var cam scene.Camera
	if *span > 0 {
		pos, err := current.CharacterPos()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		pos.Y += float32(*span)
		cam = scene.Camera{Mode: scene.BirdsEye, Pos: pos, SpanY: float32(*span)}
	} else {
		if cam, err = render.SnapshotCamera(current); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	sink := printer.New(os.Stdout)
	r := render.NewSoftwareRenderer(sink)
	info := render.FrameInfo{
		Viewport:   render.Viewport{Width: *width, Height: *height},
		Camera:     cam,
		Current:    current,
		PathStates: snaps,
	}
	if err := render.RenderLogged(r, info, log); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := sink.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
