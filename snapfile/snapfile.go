// Package snapfile loads snapshot dump directories: a meta.yaml naming the
// reference memory image, the per-frame data images and the structure
// layout, next to the image files themselves. Image files ending in .zst
// are zstd-compressed.
package snapfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"snapviz/mem"
	"snapviz/state"
)

// MetaFilename is the metadata file expected in every dump directory.
const MetaFilename = "meta.yaml"

// CurrentVersion is the newest metadata version this loader understands.
const CurrentVersion = 1

// The decoder is stateless between DecodeAll calls and shared by all loads.
var zstdDecoder, _ = zstd.NewReader(nil)

// Meta mirrors meta.yaml.
type Meta struct {
	Version   int      `yaml:"version"`
	Reference ImageDef `yaml:"reference"`
	Frames    []FrameDef `yaml:"frames"`

	// Exactly one of Layout (inline) and LayoutFile (a separate YAML file
	// in the dump directory) must be present.
	Layout     *state.Layout `yaml:"layout"`
	LayoutFile string        `yaml:"layout_file"`
}

// ImageDef names one memory image file and its base address.
type ImageDef struct {
	Base uint64 `yaml:"base"`
	File string `yaml:"file"`
}

// FrameDef names the data image of one recorded frame.
type FrameDef struct {
	Frame int    `yaml:"frame"`
	Base  uint64 `yaml:"base"`
	File  string `yaml:"file"`
}

// Dump is a loaded dump directory. All snapshots share the reference image
// and layout.
type Dump struct {
	Ref    *mem.Image
	Layout *state.Layout

	snaps []state.Snapshot
}

// Snapshots returns the loaded snapshots in metadata order.
func (d *Dump) Snapshots() []state.Snapshot { return d.snaps }

// Len returns the number of loaded snapshots.
func (d *Dump) Len() int { return len(d.snaps) }

// Frame returns the snapshot with the given frame id.
func (d *Dump) Frame(id int) (state.Snapshot, bool) {
	for _, s := range d.snaps {
		if s.Frame == id {
			return s, true
		}
	}
	return state.Snapshot{}, false
}

// Load reads a dump directory.
func Load(dir string) (*Dump, error) {
	metaPath := filepath.Join(dir, MetaFilename)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("snapfile: %w", err)
	}
	var meta Meta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("snapfile: %s: %w", metaPath, err)
	}
	if meta.Version > CurrentVersion {
		return nil, fmt.Errorf("snapfile: %s: version %d not supported", metaPath, meta.Version)
	}

	layout, err := resolveLayout(dir, &meta)
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("snapfile: %s: %w", metaPath, err)
	}

	if meta.Reference.File == "" || meta.Reference.Base == 0 {
		return nil, fmt.Errorf("snapfile: %s: reference image incomplete", metaPath)
	}
	refData, err := readImage(filepath.Join(dir, meta.Reference.File))
	if err != nil {
		return nil, err
	}
	ref := mem.NewImage(mem.Addr(meta.Reference.Base), refData)

	if len(meta.Frames) == 0 {
		return nil, fmt.Errorf("snapfile: %s: no frames", metaPath)
	}
	d := &Dump{Ref: ref, Layout: layout}
	for _, f := range meta.Frames {
		if f.File == "" || f.Base == 0 {
			return nil, fmt.Errorf("snapfile: %s: frame %d incomplete", metaPath, f.Frame)
		}
		data, err := readImage(filepath.Join(dir, f.File))
		if err != nil {
			return nil, err
		}
		// Rebasing treats the reference image as a structural template
		// over the data image, so the two must be the same length.
		if uint64(len(data)) != ref.Size() {
			return nil, fmt.Errorf("snapfile: frame %d image is %d bytes, reference is %d",
				f.Frame, len(data), ref.Size())
		}
		d.snaps = append(d.snaps, state.Snapshot{
			Frame:  f.Frame,
			Ref:    ref,
			Data:   mem.NewImage(mem.Addr(f.Base), data),
			Layout: layout,
		})
	}
	return d, nil
}

func resolveLayout(dir string, meta *Meta) (*state.Layout, error) {
	switch {
	case meta.Layout != nil && meta.LayoutFile != "":
		return nil, fmt.Errorf("snapfile: both inline layout and layout_file given")
	case meta.Layout != nil:
		return meta.Layout, nil
	case meta.LayoutFile != "":
		path := filepath.Join(dir, meta.LayoutFile)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("snapfile: %w", err)
		}
		var l state.Layout
		if err := yaml.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("snapfile: %s: %w", path, err)
		}
		return &l, nil
	default:
		return nil, fmt.Errorf("snapfile: no layout given")
	}
}

// readImage reads one image file, decompressing it when the name carries
// the .zst suffix.
func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapfile: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("snapfile: %s: %w", path, err)
	}
	return out, nil
}
