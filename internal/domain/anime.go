package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Anime is one catalog record. Field names follow the dataset's JSON keys.
// Every field except Name may be absent; Score and Episodes arrive as either
// JSON numbers or strings like "Unknown", so they use the tolerant Number type.
type Anime struct {
	ID       int    `json:"anime_id"`
	Name     string `json:"Name"`
	Score    Number `json:"Score,omitzero"`
	Genres   string `json:"Genres,omitempty"`
	Episodes Number `json:"Episodes,omitzero"`
	Studios  string `json:"Studios,omitempty"`
	Rating   string `json:"Rating,omitempty"`
	Synopsis string `json:"Synopsis,omitempty"`
	ImageURL string `json:"Image URL,omitempty"`
}

// Recommendation is an anime with its pipeline similarity score attached.
type Recommendation struct {
	Anime
	Similarity float64 `json:"similarity"`
}

// DiscoveryResult is an anime matched by filtered discovery. FilterScore is
// the mean of the per-dimension match scores; Similarity is set only when a
// description was provided.
type DiscoveryResult struct {
	Anime
	FilterScore float64 `json:"filter_score"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// GenreSet splits a comma-separated genre (or studio) string into a set of
// trimmed, non-empty entries.
func GenreSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		if g := strings.TrimSpace(part); g != "" {
			set[g] = struct{}{}
		}
	}
	return set
}

// SplitList splits a comma-separated field into trimmed non-empty entries,
// preserving order.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Jaccard computes |a∩b| / |a∪b| over two sets. Empty union yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Number preserves a JSON value that is nominally numeric but may be encoded
// as a string ("8.5") or a non-numeric placeholder ("Unknown"). The original
// token round-trips through Marshal unchanged.
type Number struct {
	raw json.RawMessage
}

// UnmarshalJSON keeps the raw token for round-tripping.
func (n *Number) UnmarshalJSON(b []byte) error {
	n.raw = append(n.raw[:0], b...)
	return nil
}

// MarshalJSON re-emits the original token, or null when unset.
func (n Number) MarshalJSON() ([]byte, error) {
	if len(n.raw) == 0 {
		return []byte("null"), nil
	}
	return n.raw, nil
}

// IsZero reports whether the value is absent or JSON null. It also drives
// omitempty-style omission decisions in callers.
func (n Number) IsZero() bool {
	return len(n.raw) == 0 || string(n.raw) == "null"
}

// Float parses the value as a float64, unquoting strings first.
// Returns false for absent, null, or non-numeric values.
func (n Number) Float() (float64, bool) {
	if n.IsZero() {
		return 0, false
	}
	s := string(n.raw)
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(n.raw, &unquoted); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumberOf wraps a float64 as a Number. Mostly used by tests and fixtures.
func NumberOf(v float64) Number {
	return Number{raw: json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))}
}

// NumberOfString wraps a string token as a Number.
func NumberOfString(s string) Number {
	b, _ := json.Marshal(s)
	return Number{raw: b}
}

// CleanSynopsis collapses the literal escape sequences the dataset carries
// inside synopsis text: `\"` and `\n` (single or doubled) become spaces.
func CleanSynopsis(s string) string {
	s = strings.ReplaceAll(s, `\"`, " ")
	s = strings.ReplaceAll(s, `\n\n`, " ")
	s = strings.ReplaceAll(s, `\n`, " ")
	return s
}
