// Package textextract finds known medicine names inside free-form
// prescription text, e.g. the output of an OCR pass.
package textextract

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Extractor returns the allowed names detected in the text. Callers must
// tolerate an empty result or an error by falling back to no detections;
// extraction never blocks the order flow.
type Extractor interface {
	Extract(ctx context.Context, text string, allowed []string) ([]string, error)
}

// Fuzzy is the built-in extractor: case-insensitive containment plus
// close-match scoring of individual tokens. It is the fallback used when no
// external text-recognition service is configured.
type Fuzzy struct {
	cutoff float64
}

func NewFuzzy() *Fuzzy {
	return &Fuzzy{cutoff: 0.82}
}

func (f *Fuzzy) Extract(ctx context.Context, text string, allowed []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	textLower := strings.ToLower(text)
	found := make(map[string]struct{})

	for _, name := range allowed {
		if strings.Contains(textLower, strings.ToLower(name)) {
			found[name] = struct{}{}
		}
	}

	for _, token := range tokenize(textLower) {
		if best, ok := f.closest(token, allowed); ok {
			found[best] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// tokenize splits on non-letters and keeps tokens long enough to score
// reliably.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, tok := range fields {
		if len(tok) < 4 {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func (f *Fuzzy) closest(token string, allowed []string) (string, bool) {
	best := ""
	bestScore := f.cutoff
	for _, name := range allowed {
		score := similarity(token, strings.ToLower(name))
		if score >= bestScore {
			best = name
			bestScore = score
		}
	}
	return best, best != ""
}

// similarity is a normalized edit-distance ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
