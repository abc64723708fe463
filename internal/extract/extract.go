package extract

import (
    "bytes"
    "errors"
    "net/http"
    "net/url"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "github.com/rs/zerolog/log"
    "golang.org/x/net/html"
    "golang.org/x/text/unicode/norm"
)

// Untitled is returned as the title when no source yields one.
const Untitled = "Untitled"

// blockSelector lists the paragraph-like elements kept from the article region.
const blockSelector = "p, li, h1, h2, h3"

// ErrNotText is returned for input that is not text, e.g. an image or PDF.
var ErrNotText = errors.New("input is not text")

// Document is the readable content recovered from a page.
type Document struct {
    Title string
    Body  string
}

// Parse builds a traversable tree from raw HTML. Malformed markup is repaired
// by the HTML5 parsing algorithm, so only non-text input fails.
func Parse(raw []byte) (*goquery.Document, error) {
    if len(raw) > 0 && !strings.HasPrefix(http.DetectContentType(raw), "text/") {
        return nil, ErrNotText
    }
    return goquery.NewDocumentFromReader(bytes.NewReader(raw))
}

// Extractor isolates the main article with a Heuristic and turns it into
// paragraph-ordered plain text. The zero value uses Readability.
type Extractor struct {
    Heuristic Heuristic
}

// New returns an Extractor using h, or Readability when h is nil.
func New(h Heuristic) *Extractor {
    return &Extractor{Heuristic: h}
}

// Extract parses raw once and returns both title and body.
func (e *Extractor) Extract(raw []byte, pageURL *url.URL) (Document, error) {
    page, err := Parse(raw)
    if err != nil {
        return Document{}, err
    }
    region := e.isolate(raw, pageURL)
    return Document{
        Title: titleFrom(region, page),
        Body:  bodyFrom(region, page),
    }, nil
}

// ExtractTitle returns the heuristic title, falling back to the literal
// <title> text and then to Untitled. The result is never blank.
func (e *Extractor) ExtractTitle(raw []byte) (string, error) {
    page, err := Parse(raw)
    if err != nil {
        return "", err
    }
    return titleFrom(e.isolate(raw, nil), page), nil
}

// ExtractBody returns the paragraph-like blocks of the article region joined
// by blank lines. When the region yields nothing, the whole page's visible
// text is returned instead; the two are never mixed.
func (e *Extractor) ExtractBody(raw []byte) (string, error) {
    page, err := Parse(raw)
    if err != nil {
        return "", err
    }
    return bodyFrom(e.isolate(raw, nil), page), nil
}

func (e *Extractor) isolate(raw []byte, pageURL *url.URL) Region {
    h := e.Heuristic
    if h == nil {
        h = Readability{}
    }
    region, err := h.Isolate(raw, pageURL)
    if err != nil {
        // An empty region sends both title and body down their fallbacks.
        log.Debug().Err(err).Msg("article heuristic failed")
        return Region{}
    }
    return region
}

func titleFrom(region Region, page *goquery.Document) string {
    if t := cleanText(region.Title); t != "" {
        return t
    }
    if t := cleanText(page.Find("title").First().Text()); t != "" {
        return t
    }
    return Untitled
}

func bodyFrom(region Region, page *goquery.Document) string {
    if body := articleText(region.ContentHTML); body != "" {
        return body
    }
    return pageText(page)
}

// articleText collects the paragraph-like elements of an HTML fragment in
// document order.
func articleText(fragment string) string {
    if strings.TrimSpace(fragment) == "" {
        return ""
    }
    doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
    if err != nil {
        return ""
    }
    var blocks []string
    doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
        var pieces []string
        for _, n := range s.Nodes {
            pieces = appendText(pieces, n)
        }
        if t := cleanText(strings.Join(pieces, " ")); t != "" {
            blocks = append(blocks, t)
        }
    })
    return strings.Join(blocks, "\n\n")
}

// pageText returns every visible text node of the page, one per line.
func pageText(page *goquery.Document) string {
    var pieces []string
    for _, n := range page.Nodes {
        pieces = appendText(pieces, n)
    }
    return norm.NFC.String(strings.TrimSpace(strings.Join(pieces, "\n")))
}

// appendText walks n depth-first and appends each non-blank text node,
// trimmed, skipping non-visible containers.
func appendText(dst []string, n *html.Node) []string {
    switch n.Type {
    case html.TextNode:
        if t := strings.TrimSpace(n.Data); t != "" {
            dst = append(dst, t)
        }
        return dst
    case html.ElementNode:
        if isInvisible(n) {
            return dst
        }
    case html.CommentNode, html.DoctypeNode:
        return dst
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        dst = appendText(dst, c)
    }
    return dst
}

func isInvisible(n *html.Node) bool {
    switch strings.ToLower(n.Data) {
    case "head", "script", "style", "noscript", "template":
        return true
    }
    return false
}

// cleanText collapses whitespace runs to single spaces, trims, and applies
// NFC normalization.
func cleanText(s string) string {
    return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
