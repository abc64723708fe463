package render

import (
    "bytes"
    "encoding/json"
    "math"
    "strconv"
    "strings"
    "time"
)

// Meta describes where a document came from. It travels with the enhanced
// output and may be replayed later by a client.
type Meta struct {
    URL       string    `json:"url"`
    Title     string    `json:"title"`
    Timestamp Timestamp `json:"timestamp"`
}

// Timestamp is the literal generation time as supplied by the client,
// normally epoch milliseconds. The literal is kept so values that do not
// parse can still be printed.
type Timestamp string

// MillisTimestamp returns t as epoch milliseconds.
func MillisTimestamp(t time.Time) Timestamp {
    return Timestamp(strconv.FormatInt(t.UnixMilli(), 10))
}

// UnmarshalJSON accepts a JSON number, a string or null. Empty JSON values
// (null, false, 0, [] and {}) decode as unset; strings are always kept, so
// "0" is the epoch.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    switch {
    case emptyJSON(b):
        *t = ""
        return nil
    case len(b) > 0 && b[0] == '"':
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *t = Timestamp(s)
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        // booleans, objects and arrays keep their raw text
        *t = Timestamp(b)
        return nil
    }
    if f, err := n.Float64(); err == nil && f == 0 {
        *t = ""
        return nil
    }
    *t = Timestamp(n.String())
    return nil
}

func emptyJSON(b []byte) bool {
    switch string(b) {
    case "null", "false", "[]", "{}":
        return true
    }
    return false
}

// MarshalJSON writes numeric timestamps as numbers and anything else as a
// string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
    if t == "" {
        return []byte("null"), nil
    }
    if _, err := strconv.ParseFloat(string(t), 64); err == nil && json.Valid([]byte(t)) {
        return []byte(t), nil
    }
    return json.Marshal(string(t))
}

// unset reports whether the timestamp carries no value.
func (t Timestamp) unset() bool { return t == "" }

// Representable epoch range: years 1 through 9999.
const (
    minEpochMillis = -62135596800000.0
    maxEpochMillis = 253402300799999.0
)

func (t Timestamp) millis() (time.Time, bool) {
    s := strings.TrimSpace(string(t))
    if s == "" || strings.ContainsAny(s, "xXpP_") {
        return time.Time{}, false
    }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
        return time.Time{}, false
    }
    if f < minEpochMillis || f > maxEpochMillis {
        return time.Time{}, false
    }
    sec, frac := math.Modf(f / 1000)
    return time.Unix(int64(sec), int64(frac*1e9)), true
}
