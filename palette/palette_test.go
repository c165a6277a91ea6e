// ABOUTME: Tests for palette lookup and luma quantization.

package palette

import (
	"image"
	"image/color"
	"testing"
)

func TestLookup(t *testing.T) {
	p, err := Lookup(DefaultName)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Name != "classic" {
		t.Errorf("Name = %q", p.Name)
	}

	if _, err := Lookup("neon"); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != 3 {
		t.Fatalf("Names = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestRecolorQuantizes(t *testing.T) {
	p, _ := Lookup("classic")

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)

	out := p.Recolor(img)
	if out.RGBAAt(0, 0) != p.Shades[0] {
		t.Errorf("white pixel = %v, want lightest shade %v", out.RGBAAt(0, 0), p.Shades[0])
	}
	if out.RGBAAt(1, 0) != p.Shades[3] {
		t.Errorf("black pixel = %v, want darkest shade %v", out.RGBAAt(1, 0), p.Shades[3])
	}
}
