// Package sequence detects missing, corrupted and inconsistent frames in
// numbered image sequences.
package sequence

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// Notation is the placeholder style a pattern was written in.
type Notation string

const (
	NotationPrintf Notation = "printf" // shot.%04d.exr
	NotationHash   Notation = "hash"   // shot.####.exr
	NotationRange  Notation = "range"  // shot.[1001-1100].exr
	NotationSpec   Notation = "spec"   // declared folder/base/start/end
)

var (
	printfRe = regexp.MustCompile(`%(\d*)d`)
	hashRe   = regexp.MustCompile(`#+`)
	rangeRe  = regexp.MustCompile(`\[(\d+)-(\d+)\]`)
)

// Pattern is a frame sequence reduced to prefix, zero padding and suffix. All
// notations normalize to this form.
type Pattern struct {
	Raw      string // as written by the user
	Notation Notation
	Folder   string // directory as written, used for issue locations
	Dir      string // directory resolved for filesystem access
	Prefix   string
	Suffix   string
	Padding  int // 0 means unpadded
	Start    int
	End      int
	HasRange bool // Start/End are explicit rather than discovered
}

// Parse recognizes printf, hash or range notation in the file name part of
// raw. Relative patterns are resolved against the working directory.
func Parse(raw string) (Pattern, error) {
	return ParseIn("", raw)
}

// ParseIn is Parse with relative patterns resolved against root.
func ParseIn(root, raw string) (Pattern, error) {
	folder, name := filepath.Split(raw)
	folder = filepath.Clean(folder)

	p := Pattern{Raw: raw, Folder: folder, Dir: folder}
	if root != "" && !filepath.IsAbs(folder) {
		p.Dir = filepath.Join(root, folder)
	}

	// printf first, then hash, then range
	if loc := printfRe.FindStringSubmatchIndex(name); loc != nil {
		p.Notation = NotationPrintf
		if loc[3] > loc[2] {
			width, err := strconv.Atoi(name[loc[2]:loc[3]])
			if err != nil {
				return Pattern{}, fmt.Errorf("invalid printf width in %q: %w", raw, err)
			}
			p.Padding = width
		}
		p.Prefix, p.Suffix = name[:loc[0]], name[loc[1]:]
		return p, nil
	}

	if loc := hashRe.FindStringIndex(name); loc != nil {
		p.Notation = NotationHash
		p.Padding = loc[1] - loc[0]
		p.Prefix, p.Suffix = name[:loc[0]], name[loc[1]:]
		return p, nil
	}

	if loc := rangeRe.FindStringSubmatchIndex(name); loc != nil {
		startText := name[loc[2]:loc[3]]
		start, err := strconv.Atoi(startText)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid range start in %q: %w", raw, err)
		}
		end, err := strconv.Atoi(name[loc[4]:loc[5]])
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid range end in %q: %w", raw, err)
		}
		if start > end {
			return Pattern{}, fmt.Errorf("range start %d is after end %d in %q", start, end, raw)
		}
		p.Notation = NotationRange
		p.Padding = len(startText)
		p.Start, p.End, p.HasRange = start, end, true
		p.Prefix, p.Suffix = name[:loc[0]], name[loc[1]:]
		return p, nil
	}

	return Pattern{}, fmt.Errorf("unrecognized sequence pattern %q (supported: printf %%04d, hash ####, range [1001-1100])", raw)
}

// FromSpec builds the pattern for a declared sequence under root.
func FromSpec(root string, spec domain.FrameSequenceSpec) Pattern {
	p := Pattern{
		Notation: NotationSpec,
		Folder:   spec.Folder,
		Dir:      filepath.Join(root, spec.Folder),
		Prefix:   spec.Base + ".",
		Suffix:   spec.Ext,
		Padding:  spec.Padding,
		Start:    spec.Start,
		End:      spec.End,
		HasRange: true,
	}
	p.Raw = filepath.Join(spec.Folder, p.printf())
	return p
}

// FileName renders the file name of frame n.
func (p Pattern) FileName(n int) string {
	return p.Prefix + domain.PadFrame(n, p.Padding) + p.Suffix
}

// Path renders the full path of frame n.
func (p Pattern) Path(n int) string {
	return filepath.Join(p.Dir, p.FileName(n))
}

// String returns the pattern in printf notation.
func (p Pattern) String() string {
	return filepath.Join(p.Folder, p.printf())
}

// ExpectedCount is the size of the inclusive range.
func (p Pattern) ExpectedCount() uint64 {
	if p.Start > p.End {
		return 0
	}
	return uint64(p.End-p.Start) + 1
}

// WithRange returns a copy with an explicit range.
func (p Pattern) WithRange(start, end int) Pattern {
	p.Start, p.End, p.HasRange = start, end, true
	return p
}

// Ext is the lower-cased extension of the frame files.
func (p Pattern) Ext() string {
	return strings.ToLower(filepath.Ext(p.Suffix))
}

func (p Pattern) printf() string {
	if p.Padding > 0 {
		return fmt.Sprintf("%s%%0%dd%s", p.Prefix, p.Padding, p.Suffix)
	}
	return p.Prefix + "%d" + p.Suffix
}

// frameRegexp matches file names of this sequence and captures the number.
// Only names that Path would produce for the captured number match: exactly
// the padding width, or wider without a leading zero.
func (p Pattern) frameRegexp() *regexp.Regexp {
	digits := `0|[1-9]\d*`
	if p.Padding > 0 {
		digits = fmt.Sprintf(`\d{%d}|[1-9]\d{%d,}`, p.Padding, p.Padding)
	}
	return regexp.MustCompile("^" + regexp.QuoteMeta(p.Prefix) + "(" + digits + ")" + regexp.QuoteMeta(p.Suffix) + "$")
}
