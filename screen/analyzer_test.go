// ABOUTME: Tests for the frame classifier using synthetic frames.

package screen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// newFrame returns a frame filled with a single color.
func newFrame(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	for y := 0; y < FrameHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drawDialogueBox paints a white box with black text speckle over the
// bottom third of the frame.
func drawDialogueBox(img *image.RGBA) {
	y0 := FrameHeight * 2 / 3
	for y := y0; y < FrameHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			img.Set(x, y, color.White)
		}
	}
	// Sparse black "glyphs" to create variance against the white box.
	for y := y0 + 6; y < FrameHeight-6; y += 4 {
		for x := 8; x < FrameWidth-8; x += 6 {
			img.Set(x, y, color.Black)
			img.Set(x+1, y, color.Black)
			img.Set(x, y+1, color.Black)
		}
	}
}

// drawTilemap paints a checkerboard resembling an overworld tile grid.
func drawTilemap(img *image.RGBA) {
	light := color.RGBA{R: 140, G: 200, B: 120, A: 255}
	dark := color.RGBA{R: 60, G: 110, B: 50, A: 255}
	for y := 0; y < FrameHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, light)
			} else {
				img.Set(x, y, dark)
			}
		}
	}
}

func TestAnalyzeSplash(t *testing.T) {
	img := newFrame(color.Black)
	a := Analyze(img)
	if a.Likely != KindSplash {
		t.Fatalf("Likely = %q, want splash", a.Likely)
	}
}

func TestAnalyzeDialogue(t *testing.T) {
	img := newFrame(color.RGBA{R: 200, G: 200, B: 200, A: 255})
	drawDialogueBox(img)

	a := Analyze(img)
	if !a.Dialogue.Detected {
		t.Fatalf("dialogue not detected: %s", a.Dialogue.Details)
	}
	if a.Likely != KindDialogue {
		t.Errorf("Likely = %q, want dialogue (%+v)", a.Likely, a.Confidences)
	}
}

func TestAnalyzeOverworld(t *testing.T) {
	img := newFrame(color.White)
	drawTilemap(img)

	a := Analyze(img)
	if !a.Overworld.Detected {
		t.Fatalf("overworld not detected: %s", a.Overworld.Details)
	}
	if a.Likely != KindOverworld {
		t.Errorf("Likely = %q, want overworld (%+v)", a.Likely, a.Confidences)
	}
	if !a.Outdoor {
		t.Error("green tilemap should register as outdoor")
	}
}

func TestDescribeMentionsLikelyKind(t *testing.T) {
	img := newFrame(color.RGBA{R: 200, G: 200, B: 200, A: 255})
	drawDialogueBox(img)

	text := Describe(img)
	if !strings.Contains(text, "dialogue box is open") {
		t.Errorf("description missing dialogue line:\n%s", text)
	}
	if !strings.Contains(text, "Confidence scores:") {
		t.Errorf("description missing confidence section:\n%s", text)
	}
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, newFrame(color.White)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := DecodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if img.Bounds().Dx() != FrameWidth || img.Bounds().Dy() != FrameHeight {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := DecodePNG([]byte("not a png")); err == nil {
		t.Error("expected error for invalid data")
	}
}
