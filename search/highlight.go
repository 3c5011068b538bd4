package search

import (
	"slices"
	"unicode"

	"github.com/arthur-debert/congvan/types"
)

// Segment is a run of text that either matched a search term or did not
type Segment struct {
	Text  string
	Match bool
}

// textFields are the result fields the text filters apply to
var textFields = []string{types.FieldAuthor, types.FieldReferenceNumber, types.FieldSummary}

// Highlight splits text into matching and non-matching segments for the
// case-insensitive term. Overlapping matches are skipped. Comparison is by
// rune so multi-byte Vietnamese letters never split.
func Highlight(text, term string) []Segment {
	if term == "" || text == "" {
		return []Segment{{Text: text}}
	}

	runes := []rune(text)
	query := foldRunes([]rune(term))
	folded := foldRunes(runes)

	var segments []Segment
	lastEnd := 0
	for i := 0; i <= len(folded)-len(query); i++ {
		if !slices.Equal(folded[i:i+len(query)], query) {
			continue
		}
		if i > lastEnd {
			segments = append(segments, Segment{Text: string(runes[lastEnd:i])})
		}
		segments = append(segments, Segment{Text: string(runes[i : i+len(query)]), Match: true})
		lastEnd = i + len(query)
		i += len(query) - 1
	}
	if lastEnd < len(runes) {
		segments = append(segments, Segment{Text: string(runes[lastEnd:])})
	}
	return segments
}

// Highlights returns the highlighted segments of every text field of doc
// the search params filter on
func Highlights(doc types.Document, params types.SearchParams) map[string][]Segment {
	out := map[string][]Segment{}
	for _, field := range textFields {
		term, _ := params.Get(field)
		if term == "" {
			continue
		}
		segments := Highlight(doc.Field(field), term)
		for _, s := range segments {
			if s.Match {
				out[field] = segments
				break
			}
		}
	}
	return out
}

// MatchedFields lists the text fields of doc containing their search term
func MatchedFields(doc types.Document, params types.SearchParams) []string {
	var fields []string
	h := Highlights(doc, params)
	for _, field := range textFields {
		if _, ok := h[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}
