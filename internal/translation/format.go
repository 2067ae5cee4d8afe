package translation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence boundary markers wrapped around every search hypothesis.
const (
	StartMarker = "<s>"
	EndMarker   = "</s>"
)

// FormatScore renders a model score with exactly three decimals.
func FormatScore(score float64) string { return fmt.Sprintf("%.3f", score) }

// RemoveSentenceMarkers drops <s> and </s> tokens.
func RemoveSentenceMarkers(s string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if f == StartMarker || f == EndMarker {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

var (
	bracketTokens = strings.NewReplacer(
		"-LRB-", "(", "-RRB-", ")",
		"-LSB-", "[", "-RSB-", "]",
		"-LCB-", "{", "-RCB-", "}",
	)
	// tokens glued to the previous word
	attachLeft = map[string]bool{
		".": true, ",": true, "!": true, "?": true, ";": true, ":": true,
		")": true, "]": true, "}": true, "%": true,
		"'s": true, "'re": true, "'ve": true, "'ll": true, "'d": true, "'m": true, "n't": true,
	}
	// tokens glued to the next word
	attachRight = map[string]bool{"(": true, "[": true, "{": true, "$": true}
)

// Detokenize turns a tokenized hypothesis into display text: markers are
// stripped, bracket escapes restored, punctuation and clitics re-attached and
// the first letter capitalized.
func Detokenize(s string) string {
	tokens := strings.Fields(bracketTokens.Replace(RemoveSentenceMarkers(s)))
	var b strings.Builder
	glue := true
	for _, tok := range tokens {
		if !glue && !attachLeft[tok] {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		glue = attachRight[tok]
	}
	return capitalize(b.String())
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// renderFields are the values substituted into an output template. The
// alignment and feature callbacks run only if the template references them.
type renderFields struct {
	id        int
	best      string
	score     float64
	alignment func() string
	features  func() string
}

// render fills a template in a single pass; substituted text is never
// rescanned for placeholders.
func render(format string, f renderFields) string {
	pairs := []string{
		"%s", RemoveSentenceMarkers(f.best),
		"%S", Detokenize(f.best),
		"%c", FormatScore(f.score),
		"%i", strconv.Itoa(f.id),
	}
	if strings.Contains(format, "%a") && f.alignment != nil {
		pairs = append(pairs, "%a", f.alignment())
	}
	if strings.Contains(format, "%f") && f.features != nil {
		pairs = append(pairs, "%f", f.features())
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

// renderFailure fills a template for a sentence whose search produced no
// result.
func renderFailure(format string, id int, source string) string {
	return strings.NewReplacer(
		"%s", source,
		"%e", "",
		"%S", "",
		"%t", "()",
		"%i", strconv.Itoa(id),
		"%a", "",
		"%f", "",
		"%c", FormatScore(0),
	).Replace(format)
}
