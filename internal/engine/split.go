package engine

import "strings"

// Defaults for the alternatives grammar
const (
	DefaultDelimiter = "|"
	DefaultEscaper   = "\\"
)

// sentinel stands in for an escaped delimiter during splitting. U+001A
// (SUBSTITUTE) is not expected in authored answer text.
const sentinel = ""

// SplitAlternatives splits text on delimiter while treating escaper+delimiter
// as a literal delimiter character inside a single alternative. Empty text
// yields a single empty alternative; consecutive delimiters yield empty
// alternatives that only match empty input. No trimming is applied.
func SplitAlternatives(text, delimiter, escaper string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if escaper == "" {
		escaper = DefaultEscaper
	}

	masked := strings.ReplaceAll(text, escaper+delimiter, sentinel)

	parts := strings.Split(masked, delimiter)
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, sentinel, delimiter)
	}
	return parts
}
