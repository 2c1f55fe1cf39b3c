package subject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var ErrMalformedLine = errors.New("malformed subject line")

var (
	// leadingMarker matches bullet glyphs and list numbering such as "1.", "2)" or "[3]".
	// Numbering must be followed by whitespace so "3.5mm lens" keeps its number.
	leadingMarker = regexp.MustCompile(`^[\s\-*•·–—]*(?:\[?\d+[.):\]]+(?:\s+|$))?[\s\-*•·–—]*`)

	fillers = []string{
		"here are",
		"here is",
		"here's",
		"i hope",
		"let me know",
	}
)

// Lines cleans every line of response. Blank and filler lines are dropped
// silently, lines with nothing usable left are reported in skipped.
func Lines(response string) (phrases []string, skipped []error) {
	for i, line := range strings.Split(response, "\n") {
		phrase, ok, err := cleanLine(line)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		if ok {
			phrases = append(phrases, phrase)
		}
	}
	return phrases, skipped
}

// Extract returns at most n subject phrases from a language model response.
// n <= 0 returns every usable phrase.
func Extract(response string, n int) []string {
	phrases, _ := Lines(response)
	if n > 0 && len(phrases) > n {
		phrases = phrases[:n]
	}
	return phrases
}

func cleanLine(line string) (string, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}
	if isFiller(line) {
		return "", false, nil
	}

	phrase := leadingMarker.ReplaceAllString(line, "")
	phrase = strings.Trim(phrase, " \t\"“”")
	phrase = strings.TrimSpace(phrase)

	if !strings.ContainsFunc(phrase, unicode.IsLetter) {
		return "", false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	return phrase, true, nil
}

func isFiller(line string) bool {
	if strings.HasSuffix(line, ":") {
		return true
	}
	lower := strings.ToLower(line)
	for _, f := range fillers {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
