package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// FrameSequenceSpec declares an expected sequence of numbered frame files.
type FrameSequenceSpec struct {
	Folder  string `json:"folder"  yaml:"folder"`
	Base    string `json:"base"    yaml:"base"`
	Ext     string `json:"ext"     yaml:"ext"`
	Start   int    `json:"start"   yaml:"start"`
	End     int    `json:"end"     yaml:"end"`
	Padding int    `json:"padding" yaml:"padding"`
}

// FileName returns "<base>.<zero-padded frame><ext>".
func (s FrameSequenceSpec) FileName(frame int) string {
	return s.Base + "." + PadFrame(frame, s.Padding) + s.Ext
}

// ExpectedCount is the size of the inclusive range. The difference is taken
// as uint64 so ranges ending at math.MaxInt do not overflow.
func (s FrameSequenceSpec) ExpectedCount() uint64 {
	if s.Start > s.End {
		return 0
	}
	return uint64(s.End-s.Start) + 1
}

// PadFrame renders a frame number zero-padded to width. Negative frames keep
// their sign ahead of the padding.
func PadFrame(frame, width int) string {
	if width <= 0 {
		return strconv.Itoa(frame)
	}
	return fmt.Sprintf("%0*d", width, frame)
}

// Resolution is an image size in pixels.
type Resolution struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Resolution) String() string { return fmt.Sprintf("%dx%d", r.Width, r.Height) }

// IsZero reports whether the resolution is unknown.
func (r Resolution) IsZero() bool { return r.Width == 0 && r.Height == 0 }

// FrameHeader is what a FormatReader extracts without decoding pixels.
type FrameHeader struct {
	Format     string     `json:"format"     yaml:"format"`
	Resolution Resolution `json:"resolution" yaml:"resolution"`
	BitDepth   int        `json:"bit_depth"  yaml:"bit_depth"`
}

// FrameInfo is the per-frame outcome of a sequence scan.
type FrameInfo struct {
	Number      int         `json:"number"                yaml:"number"`
	Path        string      `json:"path"                  yaml:"path"`
	Exists      bool        `json:"exists"                yaml:"exists"`
	Resolution  *Resolution `json:"resolution,omitempty"  yaml:"resolution,omitempty"`
	BitDepth    int         `json:"bit_depth,omitempty"   yaml:"bit_depth,omitempty"`
	Format      string      `json:"format,omitempty"      yaml:"format,omitempty"`
	Corrupted   bool        `json:"corrupted,omitempty"   yaml:"corrupted,omitempty"`
	Unsupported bool        `json:"unsupported,omitempty" yaml:"unsupported,omitempty"` // no reader handles the format
	Error       string      `json:"error,omitempty"       yaml:"error,omitempty"`
}

// Name is the frame's file name.
func (f FrameInfo) Name() string { return filepath.Base(f.Path) }
