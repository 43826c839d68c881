package chunking

import (
	"strings"
	"unicode"
)

// Split cuts text into windows of at most maxSize characters, breaking only
// at whitespace and carrying overlap characters of trailing context into the
// next window. A single token longer than maxSize is emitted whole rather
// than cut mid-token, so that window alone may exceed the bound. Counts are
// rune counts, not bytes.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)
	if n <= maxSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	start := 0
	for start < n {
		for start < n && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= n {
			break
		}

		end := start + maxSize
		if end >= n {
			end = n
		} else {
			cut := end
			for cut > start && !unicode.IsSpace(runes[cut]) {
				cut--
			}
			if cut == start {
				// single token wider than the window, take it whole
				cut = end
				for cut < n && !unicode.IsSpace(runes[cut]) {
					cut++
				}
			}
			end = cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= n {
			break
		}

		next := end - overlap
		if next <= start {
			// overlap would swallow the whole window, continue without it
			next = end
		}
		// move forward to the next word start so overlap begins on a word
		for next < n && next > 0 && !unicode.IsSpace(runes[next]) && !unicode.IsSpace(runes[next-1]) {
			next++
		}
		start = next
	}
	return chunks
}
