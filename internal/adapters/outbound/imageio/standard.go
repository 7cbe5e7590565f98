package imageio

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// StandardHandler reads PNG, JPEG, TIFF and BMP through image.DecodeConfig.
type StandardHandler struct{}

func NewStandardHandler() *StandardHandler { return &StandardHandler{} }

func (StandardHandler) Name() string { return "standard" }

func (StandardHandler) CanHandle(path string) bool {
	return hasExt(path, ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp")
}

func (StandardHandler) ReadHeader(path string) (domain.FrameHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.FrameHeader{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return domain.FrameHeader{}, corrupt("%v", err)
	}
	return domain.FrameHeader{
		Format:     strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Resolution: domain.Resolution{Width: cfg.Width, Height: cfg.Height},
		BitDepth:   modelBitDepth(cfg.ColorModel),
	}, nil
}

// modelBitDepth maps a color model to bits per channel. Unknown models count
// as 8-bit.
func modelBitDepth(m color.Model) int {
	switch m {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model, color.Alpha16Model:
		return 16
	default:
		return 8
	}
}
