package citation

import (
	"html"
	"regexp"
	"strings"
)

// StreamState is the per-stream parse buffer. One generation task owns one
// StreamState; it is never shared. Cancelling the request just discards it.
type StreamState struct {
	RemainingBuffer string
}

func NewStreamState() *StreamState {
	return &StreamState{}
}

// StreamResult is what one streaming parse pass produced: completed citations
// in order, and the text that is now safe to emit to the client. The caller
// renders each citation (typically its conclusion) at the point it receives
// it; emitted text never contains tag markup.
type StreamResult struct {
	Citations  []ParsedCitation `json:"citations"`
	TextToEmit string           `json:"text_to_emit"`
}

// incompleteCiteRe detects a trailing fragment that could still grow into a
// complete tag: a "<cite" with no closing "</cite>" yet, or a partial prefix
// of "<cite" at end of string. It only ever scans the remainder after the
// last complete tag, where any "<cite" is by construction incomplete.
var incompleteCiteRe = regexp.MustCompile(`(?s)<cite.*$|<cit$|<ci$|<c$|<$`)

// ParseStreaming finds all complete tags in buffer, in order. Text outside
// complete tags is emitted, except a trailing incomplete tag fragment, which
// is held back for the next call. Appending new chunks to the returned
// remainder and re-invoking preserves the clean-text stream: concatenating
// conclusions-then-text per call reproduces ExtractCleanText of the whole.
func ParseStreaming(buffer string) (citations []ParsedCitation, remaining string, textToEmit string) {
	var emit strings.Builder

	prev := 0
	for _, idx := range citeTagRe.FindAllStringSubmatchIndex(buffer, -1) {
		emit.WriteString(buffer[prev:idx[0]])
		citations = append(citations, ParsedCitation{
			DocID:      buffer[idx[2]:idx[3]],
			Quote:      html.UnescapeString(buffer[idx[4]:idx[5]]),
			Conclusion: buffer[idx[6]:idx[7]],
			StartPos:   idx[0],
			EndPos:     idx[1],
			RawTag:     buffer[idx[0]:idx[1]],
		})
		prev = idx[1]
	}

	rest := buffer[prev:]
	if loc := incompleteCiteRe.FindStringIndex(rest); loc != nil {
		emit.WriteString(rest[:loc[0]])
		remaining = rest[loc[0]:]
	} else {
		emit.WriteString(rest)
	}

	return citations, remaining, emit.String()
}

// Feed appends a newly streamed chunk to the held-back buffer and parses it.
func (s *StreamState) Feed(chunk string) StreamResult {
	citations, remaining, textToEmit := ParseStreaming(s.RemainingBuffer + chunk)
	s.RemainingBuffer = remaining
	return StreamResult{
		Citations:  citations,
		TextToEmit: textToEmit,
	}
}

// Flush releases whatever is still held back. Called at end of stream, when
// a dangling fragment can no longer complete into a tag.
func (s *StreamState) Flush() string {
	rest := s.RemainingBuffer
	s.RemainingBuffer = ""
	return rest
}
