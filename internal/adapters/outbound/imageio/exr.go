package imageio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

const (
	exrMagic = 20000630

	// Upper bounds that keep a damaged header from causing huge reads.
	exrMaxNameLen   = 255
	exrMaxAttrSize  = 1 << 24
	exrMaxAttrCount = 1024
)

// EXR channel pixel types.
const (
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

// EXRHandler parses the OpenEXR header attributes dataWindow and channels.
type EXRHandler struct{}

func NewEXRHandler() *EXRHandler { return &EXRHandler{} }

func (EXRHandler) Name() string { return "exr" }

func (EXRHandler) CanHandle(path string) bool { return hasExt(path, ".exr") }

func (EXRHandler) ReadHeader(path string) (domain.FrameHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.FrameHeader{}, err
	}
	defer f.Close()
	return parseEXR(bufio.NewReader(f))
}

func parseEXR(r *bufio.Reader) (domain.FrameHeader, error) {
	var preamble [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &preamble); err != nil {
		return domain.FrameHeader{}, corrupt("exr: short header")
	}
	if preamble[0] != exrMagic {
		return domain.FrameHeader{}, corrupt("exr: bad magic number %#x", preamble[0])
	}

	header := domain.FrameHeader{Format: "exr"}
	var haveWindow, haveChannels bool

	for i := 0; i < exrMaxAttrCount; i++ {
		name, err := readCString(r, exrMaxNameLen)
		if err != nil {
			return domain.FrameHeader{}, corrupt("exr: attribute name: %v", err)
		}
		if name == "" {
			break
		}
		typ, err := readCString(r, exrMaxNameLen)
		if err != nil {
			return domain.FrameHeader{}, corrupt("exr: attribute %s type: %v", name, err)
		}
		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return domain.FrameHeader{}, corrupt("exr: attribute %s size: %v", name, err)
		}
		if size < 0 || size > exrMaxAttrSize {
			return domain.FrameHeader{}, corrupt("exr: attribute %s has invalid size %d", name, size)
		}

		switch {
		case name == "dataWindow" && typ == "box2i":
			res, err := readBox2i(r, size)
			if err != nil {
				return domain.FrameHeader{}, err
			}
			header.Resolution = res
			haveWindow = true
		case name == "channels" && typ == "chlist":
			value := make([]byte, size)
			if _, err := io.ReadFull(r, value); err != nil {
				return domain.FrameHeader{}, corrupt("exr: channels: %v", err)
			}
			depth, err := channelBitDepth(value)
			if err != nil {
				return domain.FrameHeader{}, err
			}
			header.BitDepth = depth
			haveChannels = true
		default:
			if _, err := r.Discard(int(size)); err != nil {
				return domain.FrameHeader{}, corrupt("exr: attribute %s truncated", name)
			}
		}

		if haveWindow && haveChannels {
			return header, nil
		}
	}

	if !haveWindow {
		return domain.FrameHeader{}, corrupt("exr: missing dataWindow attribute")
	}
	if !haveChannels {
		return domain.FrameHeader{}, corrupt("exr: missing channels attribute")
	}
	return header, nil
}

func readBox2i(r io.Reader, size int32) (domain.Resolution, error) {
	if size != 16 {
		return domain.Resolution{}, corrupt("exr: dataWindow size %d", size)
	}
	var box [4]int32 // xMin, yMin, xMax, yMax
	if err := binary.Read(r, binary.LittleEndian, &box); err != nil {
		return domain.Resolution{}, corrupt("exr: dataWindow: %v", err)
	}
	w := int(box[2]) - int(box[0]) + 1
	h := int(box[3]) - int(box[1]) + 1
	if w <= 0 || h <= 0 {
		return domain.Resolution{}, corrupt("exr: empty dataWindow %v", box)
	}
	return domain.Resolution{Width: w, Height: h}, nil
}

// channelBitDepth returns the widest pixel type in a chlist value.
func channelBitDepth(value []byte) (int, error) {
	r := bufio.NewReader(bytes.NewReader(value))
	depth := 0
	for {
		name, err := readCString(r, exrMaxNameLen)
		if err != nil {
			return 0, corrupt("exr: channel list: %v", err)
		}
		if name == "" {
			break
		}
		// pixelType int32, pLinear uint8, reserved [3]uint8, xSampling, ySampling int32
		var rec struct {
			PixelType int32
			PLinear   uint8
			Reserved  [3]uint8
			XSampling int32
			YSampling int32
		}
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return 0, corrupt("exr: channel %s: %v", name, err)
		}
		switch rec.PixelType {
		case exrPixelHalf:
			depth = max(depth, 16)
		case exrPixelUint, exrPixelFloat:
			depth = max(depth, 32)
		default:
			return 0, corrupt("exr: channel %s has unknown pixel type %d", name, rec.PixelType)
		}
	}
	if depth == 0 {
		return 0, corrupt("exr: no channels")
	}
	return depth, nil
}

var errNameTooLong = errors.New("name too long")

func readCString(r *bufio.Reader, limit int) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		if len(buf) == limit {
			return "", errNameTooLong
		}
		buf = append(buf, b)
	}
}
