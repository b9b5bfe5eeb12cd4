package indexer

import "strings"

// Tokenizer measures the size of a chunk of text for the purposes of chunk
// sizing. Callers may supply a real model tokenizer; the default
// approximates token count from whitespace- and identifier-boundary splits,
// since no tiktoken-equivalent dependency is pulled in anywhere else in this
// module's stack.
type Tokenizer interface {
	Count(text string) int
}

// WhitespaceTokenizer is the default Tokenizer: it counts the runs of text
// left after splitting on whitespace and punctuation (punctuation itself is
// not counted), a reasonable proxy for subword token counts without a
// model-specific vocabulary.
type WhitespaceTokenizer struct{}

// Count implements Tokenizer.
func (WhitespaceTokenizer) Count(text string) int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return true
		case strings.ContainsRune(".,;:(){}[]<>+-*/=!&|\"'`", r):
			return true
		}
		return false
	})
	return len(fields)
}
