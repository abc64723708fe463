package extract

import (
    "errors"
    "net/url"
    "strings"
    "testing"
)

// stubHeuristic returns a fixed region so fallback paths can be exercised
// independently of any scoring algorithm.
type stubHeuristic struct {
    region Region
    err    error
}

func (s stubHeuristic) Isolate([]byte, *url.URL) (Region, error) { return s.region, s.err }

const longParagraph = "This paragraph carries enough prose to look like the body of a real article, " +
    "with several clauses, commas, and full stops. Readability scoring rewards text density, " +
    "so the sentences keep going for a while to clear the default character thresholds. "

func articlePage() string {
    return `<!doctype html>
    <html>
      <head><title>Site Name | Test Article</title></head>
      <body>
        <nav><a href="/">Home Nav Link</a> <a href="/about">About Nav Link</a></nav>
        <article>
          <h1>Test Article</h1>
          <p>First paragraph. ` + longParagraph + `</p>
          <h2>A Section</h2>
          <p>Second paragraph. ` + longParagraph + `</p>
          <ul><li>Bullet one</li><li>Bullet two</li></ul>
          <p>Third   paragraph
             spans lines. ` + longParagraph + `</p>
        </article>
        <footer>Copyright footer text</footer>
      </body>
    </html>`
}

func TestExtractBody_ReadabilityKeepsParagraphOrder(t *testing.T) {
    body, err := New(Readability{}).ExtractBody([]byte(articlePage()))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if body == "" {
        t.Fatalf("expected non-empty body")
    }
    first := strings.Index(body, "First paragraph.")
    second := strings.Index(body, "Second paragraph.")
    third := strings.Index(body, "Third paragraph spans lines.")
    if first < 0 || second < 0 || third < 0 {
        t.Fatalf("expected all paragraphs with collapsed whitespace; got:\n%s", body)
    }
    if !(first < second && second < third) {
        t.Fatalf("paragraphs out of order: %d %d %d", first, second, third)
    }
    if strings.Contains(body, "Home Nav Link") {
        t.Fatalf("did not expect nav text in extracted content")
    }
}

func TestExtractBody_BlocksJoinedByBlankLine(t *testing.T) {
    h := stubHeuristic{region: Region{ContentHTML: `<div><h1> Heading </h1><p>One
      two</p><p>   </p><ul><li>item</li></ul><h3>Small</h3><h4>ignored level</h4><span>loose</span></div>`}}
    body, err := New(h).ExtractBody([]byte("<html><body>whole page</body></html>"))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    want := "Heading\n\nOne two\n\nitem\n\nSmall"
    if body != want {
        t.Fatalf("expected %q, got %q", want, body)
    }
}

func TestExtractBody_FallsBackToWholePage(t *testing.T) {
    page := `<html><head><title>T</title><style>.x{color:red}</style></head>
      <body><div>Alpha <b>beta</b></div><script>var hidden = 1;</script><span>Gamma</span></body></html>`
    for name, h := range map[string]Heuristic{
        "empty region":     stubHeuristic{},
        "no blocks":        stubHeuristic{region: Region{ContentHTML: "<div>only divs</div>"}},
        "heuristic failed": stubHeuristic{err: errors.New("boom")},
    } {
        body, err := New(h).ExtractBody([]byte(page))
        if err != nil {
            t.Fatalf("%s: unexpected error: %v", name, err)
        }
        if body != "Alpha\nbeta\nGamma" {
            t.Fatalf("%s: expected whole-page text, got %q", name, body)
        }
        if strings.Contains(body, "only divs") {
            t.Fatalf("%s: strategies must not be mixed", name)
        }
    }
}

func TestExtractBody_TitleOnlyPageIsEmpty(t *testing.T) {
    body, err := New(stubHeuristic{}).ExtractBody([]byte(`<html><head><title>Only Title</title></head><body>  </body></html>`))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if body != "" {
        t.Fatalf("expected empty body, got %q", body)
    }
}

func TestExtractBody_NonStandardMarkupStillYieldsText(t *testing.T) {
    page := `<html><head><title>Cards</title></head><body>
      <div class="card"><span>Card text one</span></div>
      <div class="card"><span>Card text two</span></div></body></html>`
    body, err := New(Readability{}).ExtractBody([]byte(page))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if !strings.Contains(body, "Card text one") || !strings.Contains(body, "Card text two") {
        t.Fatalf("expected visible text in body, got %q", body)
    }
}

func TestExtractTitle_Fallbacks(t *testing.T) {
    cases := []struct {
        name  string
        h     Heuristic
        page  string
        title string
    }{
        {"heuristic wins", stubHeuristic{region: Region{Title: "  Short Title \n"}}, `<title>Long | Site</title>`, "Short Title"},
        {"literal title", stubHeuristic{region: Region{Title: "   "}}, `<html><head><title>
            Page   Title </title></head></html>`, "Page Title"},
        {"untitled", stubHeuristic{}, `<html><body><p>text</p></body></html>`, Untitled},
        {"blank title element", stubHeuristic{}, `<html><head><title>  </title></head></html>`, Untitled},
    }
    for _, tc := range cases {
        got, err := New(tc.h).ExtractTitle([]byte(tc.page))
        if err != nil {
            t.Fatalf("%s: unexpected error: %v", tc.name, err)
        }
        if got != tc.title {
            t.Fatalf("%s: expected %q, got %q", tc.name, tc.title, got)
        }
    }
}

func TestExtractTitle_ReadabilityUsesPageTitle(t *testing.T) {
    title, err := New(nil).ExtractTitle([]byte(`<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body><article><p>Content</p></article></body>
</html>`))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if title != "Page Title" {
        t.Fatalf("expected 'Page Title', got %q", title)
    }
}

func TestExtract_MalformedMarkupDoesNotFail(t *testing.T) {
    page := `<html><body><p>Unclosed <b>bold <i>nested</p><div><p>Second</div></table></body>`
    doc, err := New(stubHeuristic{}).Extract([]byte(page), nil)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if doc.Title != Untitled {
        t.Fatalf("expected placeholder title, got %q", doc.Title)
    }
    if !strings.Contains(doc.Body, "Unclosed") || !strings.Contains(doc.Body, "Second") {
        t.Fatalf("expected best-effort text, got %q", doc.Body)
    }
}

func TestExtract_RejectsBinaryInput(t *testing.T) {
    png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
    if _, err := New(nil).Extract(png, nil); !errors.Is(err, ErrNotText) {
        t.Fatalf("expected ErrNotText, got %v", err)
    }
}

func TestExtract_EmptyInput(t *testing.T) {
    doc, err := New(stubHeuristic{}).Extract(nil, nil)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if doc.Title != Untitled || doc.Body != "" {
        t.Fatalf("unexpected document: %+v", doc)
    }
}

func TestExtract_NormalizesToNFC(t *testing.T) {
    // "e" followed by a combining acute accent composes to a single rune.
    h := stubHeuristic{region: Region{Title: "Cafe\u0301", ContentHTML: "<p>Cafe\u0301 au lait</p>"}}
    doc, err := New(h).Extract([]byte("<html></html>"), nil)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if doc.Title != "Caf\u00e9" || doc.Body != "Caf\u00e9 au lait" {
        t.Fatalf("expected NFC text, got %+v", doc)
    }
}

func TestHeuristicByName(t *testing.T) {
    for _, name := range []string{"", "readability", "Trafilatura"} {
        if _, err := HeuristicByName(name); err != nil {
            t.Fatalf("%q: unexpected error: %v", name, err)
        }
    }
    if _, err := HeuristicByName("magic"); err == nil {
        t.Fatalf("expected error for unknown heuristic")
    }
}
