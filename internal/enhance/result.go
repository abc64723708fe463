package enhance

import (
    "bytes"
    "encoding/json"
    "regexp"
    "sort"
    "strings"
)

// ValidationMissing replaces the validation field when validation was
// requested but the model did not return one.
const ValidationMissing = "Validation requested but not returned."

// Result holds the displayable enhancement fields; any may be empty.
type Result struct {
    Summary    string `json:"summary"`
    Expanded   string `json:"expanded"`
    Validation string `json:"validation"`
}

// UnmarshalJSON accepts any JSON value per field. Strings are kept as is;
// lists, objects, numbers and booleans are flattened to readable text.
func (r *Result) UnmarshalJSON(b []byte) error {
    var fields map[string]json.RawMessage
    if err := json.Unmarshal(b, &fields); err != nil {
        return err
    }
    *r = Result{
        Summary:    flatten(fields["summary"]),
        Expanded:   flatten(fields["expanded"]),
        Validation: flatten(fields["validation"]),
    }
    return nil
}

// jsonObjectRe finds the outermost-looking JSON object in free-form text:
// from the first '{' to the last '}'.
var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseResult recovers the structured fields from a model answer. When no
// JSON object can be decoded the raw text becomes the summary and/or expanded
// field according to mode. Either way, a requested but missing validation is
// replaced by ValidationMissing.
func ParseResult(raw string, mode Mode, validate bool) Result {
    var res Result
    parsed := false
    if m := jsonObjectRe.FindString(raw); m != "" {
        parsed = json.Unmarshal([]byte(m), &res) == nil
    }
    if !parsed {
        res = Result{}
        if mode.wantsSummary() {
            res.Summary = raw
        }
        if mode.wantsExpanded() {
            res.Expanded = raw
        }
    }
    if validate && strings.TrimSpace(res.Validation) == "" {
        res.Validation = ValidationMissing
    }
    return res
}

// flatten renders a JSON value as plain text.
func flatten(raw json.RawMessage) string {
    raw = bytes.TrimSpace(raw)
    if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
        return ""
    }
    var v any
    dec := json.NewDecoder(bytes.NewReader(raw))
    dec.UseNumber()
    if err := dec.Decode(&v); err != nil {
        return string(raw)
    }
    return strings.TrimSpace(flattenValue(v))
}

func flattenValue(v any) string {
    switch t := v.(type) {
    case nil:
        return ""
    case string:
        return t
    case json.Number:
        return t.String()
    case bool:
        if t {
            return "true"
        }
        return "false"
    case []any:
        parts := make([]string, 0, len(t))
        sep := "\n"
        for _, e := range t {
            if _, ok := e.(map[string]any); ok {
                sep = "\n\n"
            }
            if s := strings.TrimSpace(flattenValue(e)); s != "" {
                parts = append(parts, s)
            }
        }
        return strings.Join(parts, sep)
    case map[string]any:
        keys := make([]string, 0, len(t))
        for k := range t {
            keys = append(keys, k)
        }
        sort.Strings(keys)
        lines := make([]string, 0, len(keys))
        for _, k := range keys {
            s := strings.TrimSpace(flattenValue(t[k]))
            if s == "" {
                continue
            }
            lines = append(lines, k+": "+s)
        }
        return strings.Join(lines, "\n")
    }
    return ""
}
