// ABOUTME: Heuristic frame classifier: decides whether a frame shows dialogue, a menu, the overworld, or the boot splash.
// ABOUTME: Pixel statistics only (luma thresholds, variance, gradient energy); feeds one summary block into the condition text.

package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// Game Boy frame geometry.
const (
	FrameWidth  = 160
	FrameHeight = 144
)

// Luma thresholds for UI element detection.
const (
	whiteThreshold = 240
	blackThreshold = 30
)

// Kind is the classified content of a frame.
type Kind string

const (
	KindDialogue  Kind = "dialogue"
	KindMenu      Kind = "menu"
	KindOverworld Kind = "overworld"
	KindSplash    Kind = "splash"
)

// Detection is one detector's verdict with a 0-100 confidence.
type Detection struct {
	Detected   bool
	Confidence int
	Details    string
}

// Analysis is the combined result of all detectors for one frame.
type Analysis struct {
	Likely      Kind
	Confidences map[Kind]int
	Dialogue    Detection
	Menu        Detection
	Overworld   Detection
	Outdoor     bool
}

// DecodePNG decodes a PNG frame into an image.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding frame png: %w", err)
	}
	return img, nil
}

// Analyze runs all detectors over the frame and picks the most likely kind.
func Analyze(img image.Image) Analysis {
	g := toLuma(img)

	if splash := detectSplash(g); splash.Detected {
		return Analysis{
			Likely:      KindSplash,
			Confidences: map[Kind]int{KindSplash: 100},
		}
	}

	dialogue := detectDialogue(g)
	menu := detectMenu(g)
	overworld := detectOverworld(g, dialogue)

	a := Analysis{
		Dialogue:  dialogue,
		Menu:      menu,
		Overworld: overworld,
		Outdoor:   greenBias(img),
		Confidences: map[Kind]int{
			KindDialogue:  dialogue.Confidence,
			KindMenu:      menu.Confidence,
			KindOverworld: overworld.Confidence,
		},
	}

	a.Likely = KindOverworld
	best := -1
	for _, kind := range []Kind{KindDialogue, KindMenu, KindOverworld} {
		if c := a.Confidences[kind]; c > best {
			best = c
			a.Likely = kind
		}
	}
	return a
}

// Describe renders the analysis as a text block for the decision request.
func Describe(img image.Image) string {
	a := Analyze(img)

	var b strings.Builder
	b.WriteString("Screen analysis:\n")

	switch a.Likely {
	case KindSplash:
		b.WriteString("- Boot splash screen, game not yet running\n")
	case KindDialogue:
		fmt.Fprintf(&b, "- A dialogue box is open at the bottom of the screen (confidence %d%%)\n", a.Dialogue.Confidence)
	case KindMenu:
		fmt.Fprintf(&b, "- A menu is open (confidence %d%%)\n", a.Menu.Confidence)
	case KindOverworld:
		env := "indoor"
		if a.Outdoor {
			env = "outdoor"
		}
		fmt.Fprintf(&b, "- Navigating the world map, %s area (confidence %d%%)\n", env, a.Overworld.Confidence)
	}

	b.WriteString("Confidence scores:\n")
	for _, kind := range []Kind{KindDialogue, KindMenu, KindOverworld, KindSplash} {
		if c, ok := a.Confidences[kind]; ok {
			fmt.Fprintf(&b, "- %s: %d%%\n", kind, c)
		}
	}
	return b.String()
}

// luma is a grayscale view of the frame.
type luma struct {
	w, h int
	pix  []int
}

func (g *luma) at(x, y int) int { return g.pix[y*g.w+x] }

// toLuma converts the frame to 0-255 luma values.
func toLuma(img image.Image) *luma {
	bounds := img.Bounds()
	g := &luma{
		w:   bounds.Dx(),
		h:   bounds.Dy(),
		pix: make([]int, bounds.Dx()*bounds.Dy()),
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			g.pix[i] = int((299*(r>>8) + 587*(gr>>8) + 114*(b>>8)) / 1000)
			i++
		}
	}
	return g
}

// detectDialogue looks for the text box in the bottom third: a bright
// border row plus high pixel variance from black text on white.
func detectDialogue(g *luma) Detection {
	y0 := g.h * 2 / 3
	variance := regionStdDev(g, 0, y0, g.w, g.h)

	borderWhite := 0
	for x := 0; x < g.w; x++ {
		if g.at(x, y0) > whiteThreshold || g.at(x, y0+1) > whiteThreshold {
			borderWhite++
		}
	}

	hasBorder := borderWhite > g.w*7/10
	detected := hasBorder && variance > 50
	confidence := 0
	if detected {
		confidence = clamp((variance-40)*2, 0, 100)
	}
	return Detection{
		Detected:   detected,
		Confidence: confidence,
		Details:    fmt.Sprintf("std dev %d, white border %d/%d", variance, borderWhite, g.w),
	}
}

// detectMenu looks for a mostly-white panel with black text in the right
// half of the upper screen.
func detectMenu(g *luma) Detection {
	x0, y0 := g.w/2, 0
	x1, y1 := g.w, g.h/2

	white, black, total := 0, 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := g.at(x, y)
			if v > whiteThreshold {
				white++
			} else if v < blackThreshold {
				black++
			}
			total++
		}
	}

	whitePct := white * 100 / total
	blackPct := black * 100 / total
	detected := whitePct > 50 && blackPct > 5
	confidence := 0
	if detected {
		confidence = clamp(whitePct-40, 0, 100)
	}
	return Detection{
		Detected:   detected,
		Confidence: confidence,
		Details:    fmt.Sprintf("white %d%%, black %d%%", whitePct, blackPct),
	}
}

// detectOverworld assumes the world map when there is no dialogue and the
// frame shows the grid-like gradient energy of a tilemap.
func detectOverworld(g *luma, dialogue Detection) Detection {
	energy := gradientEnergy(g)
	gridLike := energy > 15
	detected := !dialogue.Detected && gridLike
	confidence := 0
	if detected {
		confidence = clamp(energy*2, 0, 100)
	}
	return Detection{
		Detected:   detected,
		Confidence: confidence,
		Details:    fmt.Sprintf("gradient energy %d", energy),
	}
}

// detectSplash checks the center region for the dark boot screen: almost
// every pixel near black.
func detectSplash(g *luma) Detection {
	cx, cy := g.w/2, g.h/2
	black, total := 0, 0
	for y := cy - 20; y < cy+20; y++ {
		for x := cx - 40; x < cx+40; x++ {
			if y < 0 || y >= g.h || x < 0 || x >= g.w {
				continue
			}
			if g.at(x, y) < blackThreshold {
				black++
			}
			total++
		}
	}
	ratio := black * 100 / total
	return Detection{
		Detected:   ratio > 90,
		Confidence: 100,
		Details:    fmt.Sprintf("black pixel ratio %d%%", ratio),
	}
}

// regionStdDev computes the integer standard deviation of luma over a region.
func regionStdDev(g *luma, x0, y0, x1, y1 int) int {
	sum, count := 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += g.at(x, y)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	mean := sum / count

	variance := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := g.at(x, y) - mean
			variance += d * d
		}
	}
	return isqrt(variance / count)
}

// gradientEnergy approximates mean edge magnitude over the frame using
// horizontal and vertical luma differences.
func gradientEnergy(g *luma) int {
	sum, count := 0, 0
	for y := 1; y < g.h; y++ {
		for x := 1; x < g.w; x++ {
			dx := g.at(x, y) - g.at(x-1, y)
			dy := g.at(x, y) - g.at(x, y-1)
			sum += isqrt(dx*dx + dy*dy)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// greenBias reports whether green dominates the frame's mean color,
// suggesting an outdoor area.
func greenBias(img image.Image) bool {
	bounds := img.Bounds()
	var rSum, gSum, bSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
		}
	}
	return gSum > rSum && gSum > bSum
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
