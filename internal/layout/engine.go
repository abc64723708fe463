package layout

// Style names the font used for a drawn line.
type Style struct {
	Family string
	// Weight is "" for regular and "B" for bold.
	Weight string
	Size   float64
}

// Instruction places one line of text on a page. An empty Text marks a blank
// line that occupies vertical space but draws nothing.
type Instruction struct {
	Page  int
	X     float64
	Y     float64
	Text  string
	Style Style
}

// Cursor is the position of the next line.
type Cursor struct {
	Page int
	Y    float64
}

// Engine accumulates draw instructions for one document. It is not safe for
// concurrent use; every render owns its own Engine.
type Engine struct {
	geo    Geometry
	cursor Cursor
	out    []Instruction
}

// NewEngine returns an engine positioned at the top of the first page.
func NewEngine(g Geometry) *Engine {
	return &Engine{geo: g, cursor: Cursor{Page: 0, Y: g.Top()}}
}

func (e *Engine) Geometry() Geometry { return e.geo }

func (e *Engine) Cursor() Cursor { return e.cursor }

// Pages is the number of pages touched so far.
func (e *Engine) Pages() int { return e.cursor.Page + 1 }

func (e *Engine) Instructions() []Instruction { return e.out }

// Advance moves the cursor down by dy without drawing.
func (e *Engine) Advance(dy float64) { e.cursor.Y -= dy }

// Line draws text at the cursor and then moves down by advance. When the
// cursor has already crossed the bottom margin the line goes to the top of a
// new page instead.
func (e *Engine) Line(text string, style Style, advance float64) {
	if e.cursor.Y < e.geo.Bottom() {
		e.cursor.Page++
		e.cursor.Y = e.geo.Top()
	}
	e.out = append(e.out, Instruction{
		Page:  e.cursor.Page,
		X:     e.geo.Margin,
		Y:     e.cursor.Y,
		Text:  text,
		Style: style,
	})
	e.cursor.Y -= advance
}

// Flow wraps text at the geometry's column budget and emits every resulting
// line at the body pitch, breaking pages as needed. It returns the number of
// lines emitted.
func (e *Engine) Flow(text string, style Style) int {
	lines := Lines(text, e.geo.Columns)
	for _, l := range lines {
		e.Line(l, style, e.geo.Pitch())
	}
	return len(lines)
}
