package extract

import (
    "bytes"
    "errors"
    "fmt"
    "net/url"
    "strings"

    "github.com/go-shiori/go-readability"
    "github.com/markusmobius/go-trafilatura"
    "golang.org/x/net/html"
)

// Region is the main-content area a Heuristic found: a short title and the
// article body as an HTML fragment. Either field may be empty.
type Region struct {
    Title       string
    ContentHTML string
}

// Heuristic isolates the main article region of a page. Implementations can
// swap scoring tactics without changing callers; they should be deterministic
// and free of side effects.
type Heuristic interface {
    Isolate(raw []byte, pageURL *url.URL) (Region, error)
}

// Readability scores the DOM with Mozilla's Readability algorithm.
type Readability struct{}

func (Readability) Isolate(raw []byte, pageURL *url.URL) (Region, error) {
    article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
    if err != nil {
        return Region{}, err
    }
    return Region{Title: article.Title, ContentHTML: article.Content}, nil
}

// Trafilatura uses go-trafilatura with its readability/distiller fallback.
type Trafilatura struct{}

func (Trafilatura) Isolate(raw []byte, _ *url.URL) (Region, error) {
    result, err := trafilatura.Extract(bytes.NewReader(raw), trafilatura.Options{EnableFallback: true})
    if err != nil {
        return Region{}, err
    }
    if result == nil {
        return Region{}, errors.New("trafilatura returned nil result")
    }
    region := Region{Title: result.Metadata.Title}
    if result.ContentNode != nil {
        var buf bytes.Buffer
        if err := html.Render(&buf, result.ContentNode); err != nil {
            return Region{}, err
        }
        region.ContentHTML = buf.String()
    }
    return region, nil
}

// HeuristicByName maps a configuration name to a Heuristic. The empty name
// selects Readability.
func HeuristicByName(name string) (Heuristic, error) {
    switch strings.ToLower(strings.TrimSpace(name)) {
    case "", "readability":
        return Readability{}, nil
    case "trafilatura":
        return Trafilatura{}, nil
    default:
        return nil, fmt.Errorf("unknown extraction heuristic %q", name)
    }
}
