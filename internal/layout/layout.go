// Package layout wraps plain text into fixed-width lines and flows those
// lines down fixed-size pages. Units are PDF points with the origin at the
// bottom-left corner of the page, so the vertical cursor decreases as lines
// are emitted.
package layout

import (
	"errors"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// widths measures display columns. Ambiguous-width runes count as one column
// whatever the process locale, so wrapping does not depend on LANG.
var widths = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Geometry fixes the page size and text metrics used for one layout pass.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	FontSize   float64
	Leading    float64
	// Columns is the character budget of a wrapped line.
	Columns int
}

// DefaultGeometry is US Letter with 50pt margins, 10pt text on a 14pt pitch
// and a 95 column wrap.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:  612,
		PageHeight: 792,
		Margin:     50,
		FontSize:   10,
		Leading:    4,
		Columns:    95,
	}
}

// Pitch is the distance between consecutive body baselines.
func (g Geometry) Pitch() float64 { return g.FontSize + g.Leading }

// Top is where the cursor starts on a fresh page.
func (g Geometry) Top() float64 { return g.PageHeight - g.Margin }

// Bottom is the lowest baseline a line may be drawn on.
func (g Geometry) Bottom() float64 { return g.Margin + g.Pitch() }

// LinesPerPage returns how many body lines fit on a fresh page.
func (g Geometry) LinesPerPage() int {
	p := g.Pitch()
	if p <= 0 || g.Top() < g.Bottom() {
		return 1
	}
	return int(math.Floor((g.Top()-g.Bottom())/p)) + 1
}

// Validate rejects geometries that cannot hold a single line.
func (g Geometry) Validate() error {
	switch {
	case g.PageWidth <= 0 || g.PageHeight <= 0:
		return errors.New("layout: page size must be positive")
	case g.Margin < 0:
		return errors.New("layout: negative margin")
	case g.FontSize <= 0 || g.Leading < 0:
		return errors.New("layout: invalid font metrics")
	case g.Columns <= 0:
		return errors.New("layout: column budget must be positive")
	case g.Top() < g.Bottom():
		return errors.New("layout: margins leave no room for text")
	}
	return nil
}

// Wrap greedily breaks one paragraph into lines of at most columns display
// columns. Runs of whitespace collapse to a single space. Words are never
// split; a word wider than the budget gets a line of its own.
func Wrap(paragraph string, columns int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return nil
	}
	if columns <= 0 {
		return []string{strings.Join(words, " ")}
	}
	lines := make([]string, 0, 1+len(paragraph)/columns)
	var cur strings.Builder
	width := 0
	for _, w := range words {
		ww := widths.StringWidth(w)
		if cur.Len() == 0 {
			cur.WriteString(w)
			width = ww
			continue
		}
		if width+1+ww <= columns {
			cur.WriteByte(' ')
			cur.WriteString(w)
			width += 1 + ww
			continue
		}
		lines = append(lines, cur.String())
		cur.Reset()
		cur.WriteString(w)
		width = ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Lines splits text on newlines and wraps each paragraph. A blank paragraph
// yields one empty line so vertical gaps survive. Empty input yields nothing.
func Lines(text string, columns int) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n") {
		if strings.TrimSpace(p) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, Wrap(p, columns)...)
	}
	return out
}

// Width reports the display width of s in columns.
func Width(s string) int { return widths.StringWidth(s) }
