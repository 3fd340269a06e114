package analyze

import (
	"strings"
)

// titleScanLines and partScanLines bound how far into a page the heuristics
// look. Part labels on engraved parts sit in the top corner, titles in the
// first block of text, so anything further down is noise (tempo marks, lyrics).
const (
	titleScanLines = 5
	partScanLines  = 10
)

// Analyzer classifies raw OCR text for a single page. The instrument
// vocabulary is fixed at construction; vocabulary order matters because part
// detection returns the first entry that matches.
type Analyzer struct {
	vocabulary []string
}

// New creates an Analyzer over the given instrument vocabulary.
func New(vocabulary []string) *Analyzer {
	return &Analyzer{vocabulary: vocabulary}
}

// Vocabulary returns the configured instrument vocabulary.
func (a *Analyzer) Vocabulary() []string { return a.vocabulary }

// DetectTitle returns the first of the leading lines that is non-empty and
// does not mention any vocabulary entry. Empty string means no title found.
func (a *Analyzer) DetectTitle(text string) string {
	for i, line := range splitLines(text) {
		if i >= titleScanLines {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !a.containsInstrument(line) {
			return line
		}
	}
	return ""
}

// DetectPartName scans the leading lines for a vocabulary entry, line-major
// then vocabulary-minor, and returns the entry verbatim. The first match wins,
// so vocabulary order decides ambiguous lines ("Violin" before "Viola").
// Empty string means no part detected.
func (a *Analyzer) DetectPartName(text string) string {
	for i, line := range splitLines(text) {
		if i >= partScanLines {
			break
		}
		line = strings.ToLower(strings.TrimSpace(line))
		for _, part := range a.vocabulary {
			if strings.Contains(line, strings.ToLower(part)) {
				return part
			}
		}
	}
	return ""
}

// Analyze runs both heuristics over the same text.
func (a *Analyzer) Analyze(text string) (title, part string) {
	return a.DetectTitle(text), a.DetectPartName(text)
}

func (a *Analyzer) containsInstrument(line string) bool {
	lower := strings.ToLower(line)
	for _, part := range a.vocabulary {
		if strings.Contains(lower, strings.ToLower(part)) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}
