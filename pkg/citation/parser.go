package citation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"adaptive-rag-core/internal/pkg/logger"

	"github.com/google/uuid"
)

// Citation is one verifiable source span attached to generated text.
type Citation struct {
	DocumentID     string `json:"document_id"`
	PageNumber     int    `json:"page_number"`
	CharStart      int    `json:"char_start"`
	CharEnd        int    `json:"char_end"`
	ParagraphIndex *int   `json:"paragraph_index"`
	SentenceIndex  *int   `json:"sentence_index"`
	Snippet        string `json:"snippet,omitempty"`
}

// Formatting modes for FormatCitation.
const (
	FormatInline     = "inline"
	FormatStructured = "structured"
)

// inlineCitationRe matches [uuid:page:char_start:char_end]; uuid digits are
// case-insensitive 8-4-4-4-12 hex.
var inlineCitationRe = regexp.MustCompile(
	`\[([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}):(\d+):(\d+):(\d+)\]`)

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)

// Parser extracts, validates and formats citations from completed LLM output.
// Malformed candidates are dropped with a warning; parsing never fails.
type Parser struct {
	logger logger.ILogger
}

func NewParser(log logger.ILogger) *Parser {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Parser{logger: log}
}

// ExtractCitations pulls citations from both wire syntaxes: inline bracket
// markers in document order first, then citations carried in embedded JSON
// blocks. The two result sets are concatenated without deduplication; the
// persistence layer decides how to reconcile duplicates.
func (p *Parser) ExtractCitations(content string) []Citation {
	citations := p.extractInline(content)
	citations = append(citations, p.extractEmbeddedJSON(content)...)
	return citations
}

func (p *Parser) extractInline(content string) []Citation {
	var citations []Citation

	for _, match := range inlineCitationRe.FindAllStringSubmatch(content, -1) {
		docID, err := uuid.Parse(match[1])
		if err != nil {
			p.logger.Warn("CITATION", "Dropping inline citation with invalid UUID", map[string]interface{}{
				"raw": match[0], "error": err.Error(),
			})
			continue
		}

		page, err1 := strconv.Atoi(match[2])
		start, err2 := strconv.Atoi(match[3])
		end, err3 := strconv.Atoi(match[4])
		if err1 != nil || err2 != nil || err3 != nil {
			p.logger.Warn("CITATION", "Dropping inline citation with non-numeric fields", map[string]interface{}{
				"raw": match[0],
			})
			continue
		}

		citations = append(citations, Citation{
			DocumentID: docID.String(),
			PageNumber: page,
			CharStart:  start,
			CharEnd:    end,
		})
	}

	return citations
}

// embeddedCitationDoc mirrors the structured JSON wire format.
type embeddedCitationDoc struct {
	Citations []Citation `json:"citations"`
}

func (p *Parser) extractEmbeddedJSON(content string) []Citation {
	var citations []Citation

	for _, block := range findJSONBlocks(content) {
		if !strings.Contains(block, `"citations"`) {
			continue
		}

		var doc embeddedCitationDoc
		if err := json.Unmarshal([]byte(block), &doc); err != nil {
			p.logger.Warn("CITATION", "Dropping malformed embedded JSON block", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		citations = append(citations, doc.Citations...)
	}

	return citations
}

// findJSONBlocks returns every top-level brace-delimited block in order.
// Nested braces are tracked; string contents are honored so braces inside
// quoted values do not break the depth count.
func findJSONBlocks(content string) []string {
	var blocks []string

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range content {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					blocks = append(blocks, content[start:i+1])
					start = -1
				}
			}
		}
	}

	return blocks
}

// FormatCitation renders a citation in one of the exposed wire formats.
// Unknown modes fall back to inline with a warning; formatting never fails.
func (p *Parser) FormatCitation(c Citation, mode string) string {
	switch mode {
	case FormatInline:
		return fmt.Sprintf("[%s:%d:%d:%d]", c.DocumentID, c.PageNumber, c.CharStart, c.CharEnd)
	case FormatStructured:
		// Struct field order fixes the key order; optional fields stay null.
		data, err := json.Marshal(c)
		if err != nil {
			p.logger.Warn("CITATION", "Structured formatting failed, falling back to inline", map[string]interface{}{
				"error": err.Error(),
			})
			return p.FormatCitation(c, FormatInline)
		}
		return string(data)
	default:
		p.logger.Warn("CITATION", "Unknown citation format mode, using inline", map[string]interface{}{
			"mode": mode,
		})
		return p.FormatCitation(c, FormatInline)
	}
}

// ValidateCitation checks a citation against an expected document and an
// optional content length (maxChar <= 0 disables the bound). It short-circuits
// on the first failed rule.
func (p *Parser) ValidateCitation(c Citation, expectedDocID string, maxChar int) bool {
	if c.DocumentID != expectedDocID {
		return false
	}
	if c.CharStart < 0 || c.CharEnd < c.CharStart {
		return false
	}
	if maxChar > 0 && c.CharEnd > maxChar {
		return false
	}
	return true
}

// GenerateCitationMetadata builds one citation per sentence of a source
// passage. The cursor advances by len(sentence)+2 per sentence, assuming a
// two-character separator; offsets drift when the separator differs. That
// drift is accepted, documented behavior: downstream consumers treat these
// spans as anchors, not exact slices.
func (p *Parser) GenerateCitationMetadata(content, docID string, page int) []Citation {
	var citations []Citation

	cursor := 0
	index := 0
	for _, sentence := range sentenceSplitRe.Split(content, -1) {
		length := utf8.RuneCountInString(sentence)
		if strings.TrimSpace(sentence) == "" {
			cursor += length + 2
			continue
		}

		sentenceIndex := index
		citations = append(citations, Citation{
			DocumentID:    docID,
			PageNumber:    page,
			CharStart:     cursor,
			CharEnd:       cursor + length,
			SentenceIndex: &sentenceIndex,
			Snippet:       sentence,
		})

		cursor += length + 2
		index++
	}

	return citations
}
