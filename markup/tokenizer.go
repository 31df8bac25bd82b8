package markup

import "sort"

// Segment is a typed, non-overlapping slice of a line's text. Segments
// are derived on every render and never mutated in place; edits splice
// the original line text and re-tokenize.
type Segment struct {
	Text       string
	Kind       Kind
	Type       string
	StartIndex int
	EndIndex   int

	// Entry points back into the catalog for Marker and Punctuation
	// segments; nil for Plain.
	Entry *Entry
}

// candidate is a raw pattern match before overlap resolution.
type candidate struct {
	start, end int
	entry      *Entry
	order      int
}

// Tokenize scans text against the catalog and returns an ordered,
// contiguous, non-overlapping segmentation. The concatenation of the
// returned segment texts always reproduces the input exactly. Tokenize
// is total: any input, including the empty string, yields at least one
// segment.
func Tokenize(text string) []Segment {
	if text == "" {
		return []Segment{{Text: "", Kind: Plain, StartIndex: 0, EndIndex: 0}}
	}

	var candidates []candidate
	for i := range catalog {
		entry := &catalog[i]
		for _, loc := range entry.Pattern.FindAllStringIndex(text, -1) {
			candidates = append(candidates, candidate{
				start: loc[0],
				end:   loc[1],
				entry: entry,
				order: i,
			})
		}
	}

	// Earliest start first; at the same start the longer match wins,
	// so a multi-word tag beats a shorter tag it contains. Catalog
	// order breaks remaining ties deterministically.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		return a.order < b.order
	})

	// Left-to-right sweep: keep a match only if it starts at or after
	// the end of the last accepted one.
	var accepted []candidate
	lastEnd := 0
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		accepted = append(accepted, c)
		lastEnd = c.end
	}

	if len(accepted) == 0 {
		return []Segment{{Text: text, Kind: Plain, StartIndex: 0, EndIndex: len(text)}}
	}

	// Fill the gaps with Plain segments. Adjacent accepted matches
	// produce no empty Plain between them.
	segments := make([]Segment, 0, len(accepted)*2+1)
	pos := 0
	for _, c := range accepted {
		if c.start > pos {
			segments = append(segments, Segment{
				Text:       text[pos:c.start],
				Kind:       Plain,
				StartIndex: pos,
				EndIndex:   c.start,
			})
		}
		segments = append(segments, Segment{
			Text:       text[c.start:c.end],
			Kind:       c.entry.Kind,
			Type:       c.entry.Type,
			StartIndex: c.start,
			EndIndex:   c.end,
			Entry:      c.entry,
		})
		pos = c.end
	}
	if pos < len(text) {
		segments = append(segments, Segment{
			Text:       text[pos:],
			Kind:       Plain,
			StartIndex: pos,
			EndIndex:   len(text),
		})
	}

	return segments
}

// Markers returns only the Marker segments of a tokenization.
func Markers(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if s.Kind == Marker {
			out = append(out, s)
		}
	}
	return out
}

// Splice replaces the segment's span in the original line text with
// the replacement string. Edits always go through the original text,
// never the segment slice, so re-tokenizing the result is safe.
func Splice(text string, seg Segment, replacement string) string {
	start, end := seg.StartIndex, seg.EndIndex
	if start < 0 || end > len(text) || start > end {
		return text
	}
	return text[:start] + replacement + text[end:]
}

// Delete removes the segment's span from the original line text.
func Delete(text string, seg Segment) string {
	return Splice(text, seg, "")
}
