// ABOUTME: Named four-shade display palettes and frame recoloring.
// ABOUTME: Maps the Game Boy's four gray levels onto a chosen color ramp.

package palette

import (
	"fmt"
	"image"
	"image/color"
	"sort"
)

// Palette is a four-shade ramp, lightest first.
type Palette struct {
	Name   string
	Shades [4]color.RGBA
}

// DefaultName is the palette used when none is configured.
const DefaultName = "classic"

var palettes = map[string]Palette{
	"classic": {
		Name: "classic",
		Shades: [4]color.RGBA{
			{R: 0xE0, G: 0xF8, B: 0xD0, A: 0xFF},
			{R: 0x88, G: 0xC0, B: 0x70, A: 0xFF},
			{R: 0x34, G: 0x68, B: 0x56, A: 0xFF},
			{R: 0x08, G: 0x18, B: 0x20, A: 0xFF},
		},
	},
	"pocket": {
		Name: "pocket",
		Shades: [4]color.RGBA{
			{R: 0xC4, G: 0xCF, B: 0xA1, A: 0xFF},
			{R: 0x8B, G: 0x95, B: 0x6D, A: 0xFF},
			{R: 0x4D, G: 0x53, B: 0x3C, A: 0xFF},
			{R: 0x1F, G: 0x22, B: 0x18, A: 0xFF},
		},
	},
	"crimson": {
		Name: "crimson",
		Shades: [4]color.RGBA{
			{R: 0xFF, G: 0xE0, B: 0xDC, A: 0xFF},
			{R: 0xE8, G: 0x8A, B: 0x7D, A: 0xFF},
			{R: 0xA8, G: 0x3A, B: 0x32, A: 0xFF},
			{R: 0x40, G: 0x0A, B: 0x0A, A: 0xFF},
		},
	},
}

// Lookup returns the named palette.
func Lookup(name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (available: %v)", name, Names())
	}
	return p, nil
}

// Names lists the available palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recolor maps each pixel's luma onto the palette's four shades.
func (p Palette) Recolor(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			// 255..0 luma quantized to shades 0..3, lightest first.
			shade := int(3 - luma/64)
			if shade < 0 {
				shade = 0
			}
			out.SetRGBA(x, y, p.Shades[shade])
		}
	}
	return out
}
