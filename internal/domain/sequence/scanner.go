package sequence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// readAheadFactor sizes a read-ahead batch relative to the worker count.
const readAheadFactor = 4

// Scanner stats frames one by one and reads their headers through an
// optional FormatReader.
type Scanner struct {
	reader  domain.FormatReader
	workers int
	logger  hclog.Logger
}

// NewScanner creates a Scanner. reader may be nil, in which case frames are
// only checked for existence. workers <= 1 scans sequentially.
func NewScanner(reader domain.FormatReader, workers int, logger hclog.Logger) *Scanner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Scanner{reader: reader, workers: workers, logger: logger}
}

// DiscoverRange lists p.Dir once and returns the lowest and highest frame
// numbers whose file names match p, plus how many matched. A missing
// directory yields zero matches.
func (s *Scanner) DiscoverRange(p Pattern) (start, end, count int, err error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("sequence directory does not exist", "dir", p.Dir)
			return 0, 0, 0, nil
		}
		return 0, 0, 0, fmt.Errorf("listing %s: %w", p.Dir, err)
	}

	re := p.frameRegexp()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		if count == 0 || n < start {
			start = n
		}
		if count == 0 || n > end {
			end = n
		}
		count++
	}

	s.logger.Debug("discovered frame range", "dir", p.Dir, "start", start, "end", end, "count", count)
	return start, end, count, nil
}

// Frames lazily yields one FrameInfo per frame number from start to end in
// ascending order. Iteration stops early when ctx is done or the consumer
// stops. With more than one worker, frames are scanned concurrently in
// bounded batches; the yield order is unchanged.
func (s *Scanner) Frames(ctx context.Context, p Pattern, start, end int) iter.Seq[domain.FrameInfo] {
	if s.workers <= 1 {
		return func(yield func(domain.FrameInfo) bool) {
			if start > end {
				return
			}
			// n == end ends the loop; n++ past math.MaxInt would wrap.
			for n := start; ; n++ {
				if ctx.Err() != nil {
					return
				}
				if !yield(s.Scan(p, n)) || n == end {
					return
				}
			}
		}
	}

	return func(yield func(domain.FrameInfo) bool) {
		if start > end {
			return
		}
		batch := make([]domain.FrameInfo, s.workers*readAheadFactor)
		for lo := start; ; {
			hi := end
			// the wrapped difference is exact as uint
			if uint(end-lo) >= uint(len(batch)) {
				hi = lo + len(batch) - 1
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(s.workers)
			for i := 0; i <= hi-lo; i++ {
				n := lo + i
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					batch[i] = s.Scan(p, n)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return
			}

			for i := 0; i <= hi-lo; i++ {
				if !yield(batch[i]) {
					return
				}
			}
			if hi == end {
				return
			}
			lo = hi + 1
		}
	}
}

// Scan checks a single frame. A stat failure other than not-exist and any
// header read failure other than ErrUnsupportedFormat mark the frame
// corrupted.
func (s *Scanner) Scan(p Pattern, n int) domain.FrameInfo {
	info := domain.FrameInfo{Number: n, Path: p.Path(n)}

	st, err := os.Stat(info.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info
		}
		info.Exists = true
		info.Corrupted = true
		info.Error = err.Error()
		return info
	}
	info.Exists = true

	if st.IsDir() {
		info.Corrupted = true
		info.Error = "is a directory"
		return info
	}

	if s.reader == nil {
		return info
	}

	header, err := s.reader.ReadHeader(info.Path)
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		info.Unsupported = true
	case err != nil:
		info.Corrupted = true
		info.Error = err.Error()
		s.logger.Debug("frame header unreadable", "frame", n, "path", info.Path, "error", err)
	default:
		res := header.Resolution
		info.Resolution = &res
		info.BitDepth = header.BitDepth
		info.Format = header.Format
	}
	return info
}
