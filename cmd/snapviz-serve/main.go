package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"snapviz/common"
	"snapviz/render"
	"snapviz/snapfile"
	"snapviz/viewer"
)

func main() {
	dumpDir := flag.String("dump_dir", "", "Path to the snapshot dump directory")
	frame := flag.Int("frame", -1, "Frame id to serve (default: last frame in the dump)")
	addr := flag.String("addr", "localhost:8090", "Listen address")
	width := flag.Int("width", 640, "Viewport width")
	height := flag.Int("height", 480, "Viewport height")
	verbose := flag.Bool("verbose", false, "Log diagnostics")

	flag.Parse()

	if *dumpDir == "" {
		fmt.Println("snapviz-serve : Error: Missing directory string on -dump_dir option")
		os.Exit(1)
	}

	minLevel := common.SeverityWarning
	if *verbose {
		minLevel = common.SeverityDebug
	}
	log := common.NewStdLogger(minLevel)

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

	vp := render.Viewport{Width: *width, Height: *height}
	source := viewer.RenderSource(current, snaps, vp, log)

	http.Handle("/ws", viewer.NewServer(source, log).Handler())
	fmt.Printf("Serving frame %d on ws://%s/ws\n", current.Frame, *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
