package graph

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the character budget of one extraction request.
const DefaultChunkSize = 4000

// SplitText groups the newline separated paragraphs of text into chunks of
// at most max characters. Paragraphs are joined with "\n" and the joining
// newline counts toward the budget. A paragraph longer than max is split
// into sentences which are packed without separator. A paragraph without
// any sentence boundary becomes one oversized chunk and is never truncated.
// Chunks holding only whitespace are dropped.
func SplitText(text string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
	}
	appendPiece := func(s string, n int) {
		cur.WriteString(s)
		curLen += n
	}

	for _, p := range strings.Split(text, "\n") {
		pLen := utf8.RuneCountInString(p)

		if pLen > max {
			flush()
			for _, s := range splitSentences(p) {
				sLen := utf8.RuneCountInString(s)
				if curLen > 0 && curLen+sLen > max {
					flush()
				}
				appendPiece(s, sLen)
			}
			continue
		}

		if curLen == 0 && cur.Len() == 0 {
			appendPiece(p, pLen)
			continue
		}
		if curLen+1+pLen > max {
			flush()
			appendPiece(p, pLen)
			continue
		}
		appendPiece("\n", 1)
		appendPiece(p, pLen)
	}
	flush()

	return chunks
}

// splitSentences cuts s after every maximal run of '.', '!' or '?'. Text
// after the last terminator is kept as a final piece, so joining the result
// gives s back.
func splitSentences(s string) []string {
	var out []string
	start := 0
	inTerm := false
	for i, r := range s {
		term := r == '.' || r == '!' || r == '?'
		if inTerm && !term {
			out = append(out, s[start:i])
			start = i
		}
		inTerm = term
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
