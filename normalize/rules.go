package normalize

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

// expressionVocab maps an emotion marker label to the vocalization
// spliced into the line in its place. Markers with an empty entry are
// removed outright; prosodic cues like (whispers) have no spoken
// equivalent and are handled the same way.
var expressionVocab = map[string]string{
	"laughs":    "haha",
	"giggles":   "hehe",
	"chuckles":  "heh",
	"thinking":  "hmm",
	"surprised": "oh!",
}

var (
	pausePattern     = regexp.MustCompile(`(?i)\s*\(pause\)\s*`)
	longPausePattern = regexp.MustCompile(`(?i)\s*\(long pause\)\s*`)
	emotionPattern   = regexp.MustCompile(`(?i)\s*\(([a-z ]+)\)`)

	// Fillers and discourse markers that read better without a
	// trailing comma when they open a clause.
	discoursePattern = regexp.MustCompile(`\b(Arre|Arrey|Haan|Yaar|Toh|Okay|Achcha|Well|So|Hmm)\s*,\s+([A-Z])`)

	doubleCommaPattern   = regexp.MustCompile(`,\s*,+`)
	trailingCommaPattern = regexp.MustCompile(`,\s*$`)
	commaEllipsisPattern = regexp.MustCompile(`,\s*\.\.\.`)

	// "... aur" reads as a stall before a connective; dropping the
	// ellipsis keeps the sentence moving. The pattern swallows a whole
	// run of ellipses and the whitespace around them, so one pass
	// leaves nothing for a second pass to match.
	ellipsisConnective = regexp.MustCompile(`(?:\s*\.\.\.)+\s+(aur|par|toh|lekin|and|but|so|then|ki)\b`)

	dotRunPattern     = regexp.MustCompile(`\.{4,}\s*`)
	parentheticals    = regexp.MustCompile(`\([^)]*\)`)
	bracketed         = regexp.MustCompile(`\[[^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// applyHints rewrites words the voice mispronounces with their phonetic
// spellings. Matching is whole-word and case-insensitive; the hint text
// is used verbatim. Longer hints run first so "New York" wins over a
// bare "New", and ties break lexically to keep the pass deterministic
// regardless of map order.
func applyHints(text string, hints map[string]string) string {
	words := make([]string, 0, len(hints))
	for word := range hints {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	for _, word := range words {
		p, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			continue
		}
		text = p.ReplaceAllString(text, hints[word])
	}
	return text
}

// pausesToPunctuation turns stage-direction pauses into punctuation the
// voice actually honors: (pause) becomes a comma, (long pause) an
// ellipsis with held spacing. Both attach to the preceding word.
func pausesToPunctuation(text string) string {
	text = longPausePattern.ReplaceAllString(text, "...  ")
	text = pausePattern.ReplaceAllString(text, ", ")
	return text
}

// emotionsToExpressions replaces emotion markers with spoken
// vocalizations, padded with ellipses so they land as asides:
// "(laughs)" becomes "... haha ...". Markers with no vocalization are
// deleted. When rng is non-nil, markers whose vocabulary offers
// variants pick one at random.
func emotionsToExpressions(text string, rng *rand.Rand) string {
	return emotionPattern.ReplaceAllStringFunc(text, func(m string) string {
		label := strings.ToLower(strings.Trim(m, "() \t"))
		word, ok := expressionVocab[label]
		if !ok || word == "" {
			// Unknown or silent cue: drop it with its leading space so
			// no stray gap is left behind an ellipsis.
			return ""
		}
		if rng != nil {
			if alts := expressionVariants[label]; len(alts) > 0 {
				word = alts[rng.Intn(len(alts))]
			}
		}
		return " ... " + word + " ..."
	})
}

// expressionVariants lists interchangeable readings for a marker; the
// canonical vocab entry is always first so nil-rng runs stay stable.
var expressionVariants = map[string][]string{
	"laughs":  {"haha", "haha", "ha ha"},
	"giggles": {"hehe", "hehe", "he he"},
}

// punctuationDiscipline trims comma patterns that make the voice
// stutter. Every rewrite strictly reduces the comma count, so the rule
// is idempotent.
func punctuationDiscipline(text string) string {
	text = discoursePattern.ReplaceAllString(text, "$1 $2")
	text = doubleCommaPattern.ReplaceAllString(text, ",")
	text = commaEllipsisPattern.ReplaceAllString(text, "...")
	text = ellipsisConnective.ReplaceAllString(text, " $1")
	text = trailingCommaPattern.ReplaceAllString(text, "")
	return text
}

// cleanup is the final pass: cap dot runs at an ellipsis, strip any
// parenthetical or bracketed text the earlier rules left behind, and
// collapse runs of spaces. The two-space tail of "...  " is a timing
// cue and survives the collapse.
func cleanup(text string) string {
	text = dotRunPattern.ReplaceAllString(text, "... ")
	text = parentheticals.ReplaceAllString(text, "")
	text = bracketed.ReplaceAllString(text, "")

	const held = "\x00"
	text = strings.ReplaceAll(text, "...  ", "..."+held)
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "..."+held, "...  ")

	return strings.TrimSpace(text)
}
