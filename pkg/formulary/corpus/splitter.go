package corpus

import (
	"regexp"
	"strings"
)

// DefaultWordPattern separates words on runs of non-word characters.
const DefaultWordPattern = `\W+`

// Splitter turns raw text into word sequences. The zero pattern falls back
// to DefaultWordPattern; casing is the splitter's only normalization, all
// other tokenizer policy stays outside the engine.
type Splitter struct {
	re    *regexp.Regexp
	lower bool
}

// NewSplitter compiles a word-separator pattern. An empty pattern selects
// DefaultWordPattern.
func NewSplitter(pattern string, lower bool) (*Splitter, error) {
	if pattern == "" {
		pattern = DefaultWordPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Splitter{re: re, lower: lower}, nil
}

// Split returns the non-empty words of text.
func (s *Splitter) Split(text string) []string {
	if s.lower {
		text = strings.ToLower(text)
	}
	var words []string
	for _, w := range s.re.Split(text, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
