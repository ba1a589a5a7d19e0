// Package preview renders distance field slices as images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chewxy/math32"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/meshkit/pkg/sdf"
)

// Palette endpoints. Values at the surface are drawn as Surface and fade
// towards Inside or Outside as the distance approaches the band limit.
var (
	Inside  = color.NRGBA{R: 40, G: 90, B: 220, A: 255}
	Outside = color.NRGBA{R: 240, G: 140, B: 30, A: 255}
	Surface = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	Empty   = color.NRGBA{A: 255}
)

// Format is an image encoding for slices.
type Format string

const (
	WebP Format = "webp" // lossless
	BMP  Format = "bmp"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case WebP, BMP:
		return f, nil
	}
	return "", fmt.Errorf("preview: unknown image format %q", s)
}

var axisNames = [3]string{"x", "y", "z"}

// SliceName returns the file name used for slice i along axis.
func SliceName(axis, i int, f Format) string {
	return fmt.Sprintf("slice_%s_%d.%s", axisNames[axis], i, f)
}

// Band returns the largest finite magnitude in g, or 1 for an empty grid.
func Band(g *sdf.Grid) float32 {
	lo, hi, ok := g.Range()
	if !ok {
		return 1
	}
	if b := math32.Max(math32.Abs(lo), math32.Abs(hi)); b > 0 {
		return b
	}
	return 1
}

// Colorize maps s to an image. Slice row 0 is the bottom image row.
func Colorize(s sdf.Slice, band float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetNRGBA(x, s.Height-1-y, valueColor(s.At(x, y), band))
		}
	}
	return img
}

func valueColor(v, band float32) color.NRGBA {
	if math32.IsInf(v, 0) || math32.IsNaN(v) {
		return Empty
	}
	t := math32.Min(math32.Abs(v)/band, 1)
	target := Outside
	if v < 0 {
		target = Inside
	}
	return color.NRGBA{
		R: lerp(Surface.R, target.R, t),
		G: lerp(Surface.G, target.G, t),
		B: lerp(Surface.B, target.B, t),
		A: 255,
	}
}

func lerp(a, b uint8, t float32) uint8 {
	return uint8(math32.Round(float32(a) + (float32(b)-float32(a))*t))
}

// Encode writes s as an image in format f.
func Encode(w io.Writer, s sdf.Slice, band float32, f Format) error {
	img := Colorize(s, band)
	var err error
	switch f {
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("preview: unknown image format %q", f)
	}
	if err != nil {
		return fmt.Errorf("%s encode: %w", f, err)
	}
	return nil
}

// ExportSlice writes slice i along axis into dir and returns the file path.
func ExportSlice(dir string, g *sdf.Grid, axis, i int, f Format) (string, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return "", err
	}
	s, err := g.Slice(axis, i)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, SliceName(axis, i, f))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(out, s, Band(g), f); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}
