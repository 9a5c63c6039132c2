package dsv

import (
	"path/filepath"
	"strings"
)

var sniffCandidates = []byte{',', '\t', ';', '|'}

// DelimiterForPath picks the delimiter implied by a file extension. ok is
// false when the extension says nothing.
func DelimiterForPath(path string) (byte, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t', true
	case ".csv":
		return ',', true
	case ".psv":
		return '|', true
	}
	return 0, false
}

// Sniff guesses the field delimiter from the first lines of text: the
// candidate that appears a consistent, non-zero number of times on most
// lines wins. Falls back to ','.
func Sniff(text string, quote byte) byte {
	if len(text) > detectWindow {
		text = text[:detectWindow]
	}
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	if len(lines) > 1 {
		// the last line may be cut by the window
		lines = lines[:len(lines)-1]
	}
	best, bestScore := byte(','), 0.0
	for _, delim := range sniffCandidates {
		if score := scoreDelimiter(lines, delim, quote); score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func scoreDelimiter(lines []string, delim, quote byte) float64 {
	freq := map[int]int{}
	total := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		total++
		freq[CountOutsideQuotes(ln, delim, quote)]++
	}
	if total == 0 {
		return 0
	}
	bestCount, bestFreq := 0, 0
	for cnt, f := range freq {
		if f > bestFreq || (f == bestFreq && cnt > bestCount) {
			bestCount, bestFreq = cnt, f
		}
	}
	if bestCount == 0 {
		return 0
	}
	ratio := float64(bestFreq) / float64(total)
	return ratio + float64(bestCount)/1000
}
