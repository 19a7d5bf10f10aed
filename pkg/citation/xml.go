package citation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"adaptive-rag-core/internal/pkg/logger"
)

// ParsedCitation is one <cite> tag lifted out of model output.
// StartPos/EndPos are byte offsets of the raw tag in the source text.
type ParsedCitation struct {
	DocID      string `json:"doc_id"`
	Quote      string `json:"quote"`
	Conclusion string `json:"conclusion"`
	StartPos   int    `json:"start_pos"`
	EndPos     int    `json:"end_pos"`
	RawTag     string `json:"raw_tag"`
}

// CitationPosition locates a citation's conclusion inside the clean
// (markup-stripped) text, for UI highlighting.
type CitationPosition struct {
	Citation ParsedCitation `json:"citation"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
}

// ValidationResult collects every rule violation for one parsed citation.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

// citeTagRe accepts doc_ IDs with any digit count; the stricter two-digit rule
// lives in Validate only. The parse/validate asymmetry is deliberate and must
// not be unified without a product decision: loose parsing keeps citations
// visible in the UI, strict validation flags them for correction.
var citeTagRe = regexp.MustCompile(`(?s)<cite\s+doc_id="(doc_\d+)"\s+quote="([^"]*)"\s*>(.*?)</cite>`)

// strictDocIDRe is the two-digit form Validate enforces.
var strictDocIDRe = regexp.MustCompile(`^doc_\d{2}$`)

// XMLParser handles the <cite doc_id="doc_NN" quote="...">conclusion</cite>
// wire syntax, in batch and streaming form.
type XMLParser struct {
	logger logger.ILogger
}

func NewXMLParser(log logger.ILogger) *XMLParser {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &XMLParser{logger: log}
}

// Parse scans complete tags in order. XML entities in the quote attribute are
// unescaped; the conclusion is taken verbatim.
func (p *XMLParser) Parse(text string) []ParsedCitation {
	var citations []ParsedCitation

	for _, idx := range citeTagRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		citations = append(citations, ParsedCitation{
			DocID:      text[idx[2]:idx[3]],
			Quote:      html.UnescapeString(text[idx[4]:idx[5]]),
			Conclusion: text[idx[6]:idx[7]],
			StartPos:   idx[0],
			EndPos:     idx[1],
			RawTag:     raw,
		})
	}

	return citations
}

// ExtractCleanText replaces each complete tag with its conclusion, leaving
// all other text untouched and in order.
func (p *XMLParser) ExtractCleanText(text string) string {
	return citeTagRe.ReplaceAllString(text, "$3")
}

// GetCitationPositions builds the clean text while recording, per citation,
// the [start,end) byte span of its conclusion within that clean text.
func (p *XMLParser) GetCitationPositions(text string) (string, []CitationPosition) {
	var clean strings.Builder
	var positions []CitationPosition

	prev := 0
	for _, idx := range citeTagRe.FindAllStringSubmatchIndex(text, -1) {
		clean.WriteString(text[prev:idx[0]])

		conclusion := text[idx[6]:idx[7]]
		start := clean.Len()
		clean.WriteString(conclusion)

		positions = append(positions, CitationPosition{
			Citation: ParsedCitation{
				DocID:      text[idx[2]:idx[3]],
				Quote:      html.UnescapeString(text[idx[4]:idx[5]]),
				Conclusion: conclusion,
				StartPos:   idx[0],
				EndPos:     idx[1],
				RawTag:     text[idx[0]:idx[1]],
			},
			Start: start,
			End:   start + len(conclusion),
		})

		prev = idx[1]
	}
	clean.WriteString(text[prev:])

	return clean.String(), positions
}

// Validate checks one parsed citation against the strict rules. Unlike the
// inline validator it collects every violation instead of short-circuiting,
// and it enforces the two-digit doc_id form the parser deliberately does not.
func (p *XMLParser) Validate(c ParsedCitation) ValidationResult {
	var violations []string

	if !strictDocIDRe.MatchString(c.DocID) {
		violations = append(violations, fmt.Sprintf("doc_id %q must match doc_NN (exactly two digits)", c.DocID))
	}

	quote := strings.TrimSpace(c.Quote)
	if len(strings.Fields(quote)) < 3 && utf8.RuneCountInString(quote) < 20 {
		violations = append(violations, "quote must be at least 3 words or 20 characters")
	}

	if strings.TrimSpace(c.Conclusion) == "" {
		violations = append(violations, "conclusion must not be empty")
	}

	if len(violations) > 0 {
		p.logger.Warn("CITATION", "XML citation failed validation", map[string]interface{}{
			"doc_id":     c.DocID,
			"violations": violations,
		})
	}

	return ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
