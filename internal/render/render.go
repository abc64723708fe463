// Package render lays out an enhanced article and draws it as a PDF.
package render

import (
    "bytes"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/jung-kurt/gofpdf"
    "golang.org/x/text/encoding/charmap"

    "github.com/hyperifyio/goenhance/internal/enhance"
    "github.com/hyperifyio/goenhance/internal/layout"
)

// DefaultTitle is drawn when the metadata carries no title.
const DefaultTitle = "Enhanced Document"

const timeLayout = "2006-01-02 15:04:05"

// ErrUnsupportedText is returned when a line holds characters the core PDF
// fonts cannot draw. Rendering fails instead of substituting them.
var ErrUnsupportedText = errors.New("text not representable in the document encoding")

var (
    titleStyle   = layout.Style{Family: "Helvetica", Weight: "B", Size: 16}
    metaStyle    = layout.Style{Family: "Helvetica", Size: 9}
    headingStyle = layout.Style{Family: "Helvetica", Weight: "B", Size: 12}
)

// Vertical advances after each header element, in points.
const (
    titleAdvance   = 24
    sourceAdvance  = 14
    stampAdvance   = 20
    sectionGap     = 8
    headingAdvance = 16
)

type section struct {
    label string
    text  string
    gap   bool
}

func sections(out enhance.Result) []section {
    return []section{
        {label: "Summary", text: out.Summary},
        {label: "Expanded Context", text: out.Expanded, gap: true},
        {label: "Validation & Reasoning", text: out.Validation, gap: true},
    }
}

// Renderer turns metadata plus enhancement output into a document. The zero
// value renders US Letter in UTC using the wall clock.
type Renderer struct {
    Geometry layout.Geometry
    // Now supplies the time printed when no timestamp is given.
    Now func() time.Time
    // Location is used to format supplied timestamps.
    Location *time.Location
}

// New returns a renderer with default geometry.
func New() *Renderer {
    return &Renderer{Geometry: layout.DefaultGeometry(), Now: time.Now, Location: time.UTC}
}

// Plan is the full set of draw instructions for one document.
type Plan struct {
    Pages        int
    Instructions []layout.Instruction
}

func (r *Renderer) geometry() layout.Geometry {
    if r == nil || r.Geometry == (layout.Geometry{}) {
        return layout.DefaultGeometry()
    }
    return r.Geometry
}

func (r *Renderer) now() time.Time {
    if r == nil || r.Now == nil {
        return time.Now().UTC()
    }
    return r.Now().UTC()
}

func (r *Renderer) location() *time.Location {
    if r == nil || r.Location == nil {
        return time.UTC
    }
    return r.Location
}

// Stamp formats the generation line value.
func (r *Renderer) Stamp(ts Timestamp) string {
    if ts.unset() {
        return r.now().Format(timeLayout) + " UTC"
    }
    if t, ok := ts.millis(); ok {
        return t.In(r.location()).Format(timeLayout)
    }
    return string(ts)
}

func titleOf(meta Meta) string {
    if t := strings.TrimSpace(meta.Title); t != "" {
        return t
    }
    return DefaultTitle
}

// Plan lays out the document without drawing it.
func (r *Renderer) Plan(meta Meta, out enhance.Result) (Plan, error) {
    g := r.geometry()
    if err := g.Validate(); err != nil {
        return Plan{}, err
    }
    e := layout.NewEngine(g)
    body := layout.Style{Family: "Helvetica", Size: g.FontSize}

    e.Line(titleOf(meta), titleStyle, titleAdvance)
    e.Line("Source: "+meta.URL, metaStyle, sourceAdvance)
    e.Line("Generated: "+r.Stamp(meta.Timestamp), metaStyle, stampAdvance)
    for _, s := range sections(out) {
        if s.text == "" {
            continue
        }
        if s.gap {
            e.Advance(sectionGap)
        }
        e.Line(s.label, headingStyle, headingAdvance)
        e.Flow(s.text, body)
    }
    return Plan{Pages: e.Pages(), Instructions: e.Instructions()}, nil
}

// Render draws the document and returns the finished PDF bytes. Output is
// byte-identical for identical input and clock.
func (r *Renderer) Render(meta Meta, out enhance.Result) ([]byte, error) {
    plan, err := r.Plan(meta, out)
    if err != nil {
        return nil, fmt.Errorf("layout: %w", err)
    }
    g := r.geometry()

    pdf := gofpdf.NewCustom(&gofpdf.InitType{
        OrientationStr: "P",
        UnitStr:        "pt",
        Size:           gofpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
    })
    pdf.SetMargins(g.Margin, g.Margin, g.Margin)
    pdf.SetAutoPageBreak(false, 0)
    pdf.SetCompression(true)
    pdf.SetCatalogSort(true)
    pdf.SetCreationDate(r.now())
    pdf.SetModificationDate(r.now())
    pdf.SetCreator("goenhance", true)
    pdf.SetTitle(titleOf(meta), true)
    page := -1
    for _, in := range plan.Instructions {
        for page < in.Page {
            pdf.AddPage()
            page++
        }
        if in.Text == "" {
            continue
        }
        text, err := cp1252(in.Text)
        if err != nil {
            return nil, fmt.Errorf("page %d: %w", in.Page+1, err)
        }
        pdf.SetFont(in.Style.Family, in.Style.Weight, in.Style.Size)
        // layout measures from the bottom edge, gofpdf from the top
        pdf.Text(in.X, g.PageHeight-in.Y, text)
    }
    if err := pdf.Error(); err != nil {
        return nil, fmt.Errorf("pdf: %w", err)
    }
    var buf bytes.Buffer
    if err := pdf.Output(&buf); err != nil {
        return nil, fmt.Errorf("pdf output: %w", err)
    }
    return buf.Bytes(), nil
}

// cp1252 encodes s for the core fonts, which are Windows-1252.
func cp1252(s string) (string, error) {
    b := make([]byte, 0, len(s))
    for _, c := range s {
        enc, ok := charmap.Windows1252.EncodeRune(c)
        if !ok {
            return "", fmt.Errorf("%w: %q", ErrUnsupportedText, c)
        }
        b = append(b, enc)
    }
    return string(b), nil
}

// Filename derives the attachment name from a title.
func Filename(title string) string {
    if title == "" {
        title = "enhanced"
    }
    return strings.ReplaceAll(title, "/", "_") + ".pdf"
}
