package imageio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// Offsets into the DPX file and image information headers.
const (
	dpxWidthOffset   = 772
	dpxHeightOffset  = 776
	dpxBitSizeOffset = 803
	dpxHeaderLen     = dpxBitSizeOffset + 1
)

// DPXHandler reads the generic DPX header. Byte order follows the magic
// number: "SDPX" is big endian, "XPDS" little endian.
type DPXHandler struct{}

func NewDPXHandler() *DPXHandler { return &DPXHandler{} }

func (DPXHandler) Name() string { return "dpx" }

func (DPXHandler) CanHandle(path string) bool { return hasExt(path, ".dpx") }

func (DPXHandler) ReadHeader(path string) (domain.FrameHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.FrameHeader{}, err
	}
	defer f.Close()

	buf := make([]byte, dpxHeaderLen)
	if _, err := io.ReadFull(f, buf); err != nil {
		return domain.FrameHeader{}, corrupt("dpx: short header")
	}
	return parseDPX(buf)
}

func parseDPX(buf []byte) (domain.FrameHeader, error) {
	var order binary.ByteOrder
	switch string(buf[:4]) {
	case "SDPX":
		order = binary.BigEndian
	case "XPDS":
		order = binary.LittleEndian
	default:
		return domain.FrameHeader{}, corrupt("dpx: bad magic number %q", buf[:4])
	}

	w := order.Uint32(buf[dpxWidthOffset:])
	h := order.Uint32(buf[dpxHeightOffset:])
	if w == 0 || h == 0 {
		return domain.FrameHeader{}, corrupt("dpx: invalid dimensions %dx%d", w, h)
	}
	return domain.FrameHeader{
		Format:     "dpx",
		Resolution: domain.Resolution{Width: int(w), Height: int(h)},
		BitDepth:   int(buf[dpxBitSizeOffset]),
	}, nil
}
