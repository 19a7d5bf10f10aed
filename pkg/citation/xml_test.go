package citation

import (
	"strings"
	"testing"
)

func TestXMLParse(t *testing.T) {
	p := NewXMLParser(nil)

	tests := []struct {
		name      string
		text      string
		wantCount int
	}{
		{
			name:      "no tags",
			text:      "plain response",
			wantCount: 0,
		},
		{
			name:      "single tag",
			text:      `Before <cite doc_id="doc_01" quote="the exact source words">my conclusion</cite> after.`,
			wantCount: 1,
		},
		{
			name: "multiple tags in order",
			text: `<cite doc_id="doc_01" quote="first quote here">one</cite> and ` +
				`<cite doc_id="doc_02" quote="second quote here">two</cite>`,
			wantCount: 2,
		},
		{
			name:      "three digit doc id still parses",
			text:      `<cite doc_id="doc_001" quote="quote words here">c</cite>`,
			wantCount: 1,
		},
		{
			name:      "unclosed tag is ignored",
			text:      `<cite doc_id="doc_01" quote="q">dangling`,
			wantCount: 0,
		},
		{
			name:      "non doc id is ignored",
			text:      `<cite doc_id="source_1" quote="q">c</cite>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			if len(got) != tt.wantCount {
				t.Errorf("citations = %d, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestXMLParseFields(t *testing.T) {
	p := NewXMLParser(nil)

	text := `Intro <cite doc_id="doc_07" quote="Tom &amp; Jerry &quot;quoted&quot;">the conclusion</cite> outro`
	got := p.Parse(text)
	if len(got) != 1 {
		t.Fatalf("citations = %d, want 1", len(got))
	}

	c := got[0]
	if c.DocID != "doc_07" {
		t.Errorf("DocID = %s, want doc_07", c.DocID)
	}
	// Entities unescape in the quote only.
	if c.Quote != `Tom & Jerry "quoted"` {
		t.Errorf("Quote = %q", c.Quote)
	}
	if c.Conclusion != "the conclusion" {
		t.Errorf("Conclusion = %q", c.Conclusion)
	}
	if c.StartPos != 6 {
		t.Errorf("StartPos = %d, want 6", c.StartPos)
	}
	if text[c.StartPos:c.EndPos] != c.RawTag {
		t.Error("StartPos/EndPos do not bound RawTag")
	}
	if !strings.HasPrefix(c.RawTag, "<cite") || !strings.HasSuffix(c.RawTag, "</cite>") {
		t.Errorf("RawTag = %q", c.RawTag)
	}
}

func TestExtractCleanText(t *testing.T) {
	p := NewXMLParser(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "tag replaced by conclusion",
			text: `A <cite doc_id="doc_01" quote="source words here">B</cite> C`,
			want: "A B C",
		},
		{
			name: "multiple tags",
			text: `<cite doc_id="doc_01" quote="q one words">X</cite>-<cite doc_id="doc_02" quote="q two words">Y</cite>`,
			want: "X-Y",
		},
		{
			name: "no tags unchanged",
			text: "nothing to strip",
			want: "nothing to strip",
		},
		{
			name: "incomplete tag left verbatim",
			text: `text <cite doc_id="doc_01" quote="q">cut off`,
			want: `text <cite doc_id="doc_01" quote="q">cut off`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ExtractCleanText(tt.text)
			if got != tt.want {
				t.Errorf("clean = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetCitationPositions(t *testing.T) {
	p := NewXMLParser(nil)

	text := `Start <cite doc_id="doc_01" quote="quote words one">alpha</cite> mid <cite doc_id="doc_02" quote="quote words two">beta</cite> end`
	clean, positions := p.GetCitationPositions(text)

	if clean != "Start alpha mid beta end" {
		t.Fatalf("clean = %q", clean)
	}
	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(positions))
	}

	// Each recorded span must slice the clean text to the conclusion.
	for i, pos := range positions {
		if clean[pos.Start:pos.End] != pos.Citation.Conclusion {
			t.Errorf("position %d: clean[%d:%d] = %q, want %q",
				i, pos.Start, pos.End, clean[pos.Start:pos.End], pos.Citation.Conclusion)
		}
	}
	if positions[0].Start != 6 || positions[0].End != 11 {
		t.Errorf("first span = [%d,%d), want [6,11)", positions[0].Start, positions[0].End)
	}
}

func TestGetCitationPositionsMatchesExtractCleanText(t *testing.T) {
	p := NewXMLParser(nil)

	text := `a<cite doc_id="doc_01" quote="some quote words">x</cite>b<cite doc_id="doc_002" quote="more quote words">y</cite>c trailing <cite unfinished`
	clean, _ := p.GetCitationPositions(text)

	if clean != p.ExtractCleanText(text) {
		t.Errorf("GetCitationPositions clean %q diverges from ExtractCleanText %q",
			clean, p.ExtractCleanText(text))
	}
}

func TestXMLValidate(t *testing.T) {
	p := NewXMLParser(nil)

	tests := []struct {
		name           string
		citation       ParsedCitation
		wantValid      bool
		wantViolations int
	}{
		{
			name: "fully valid",
			citation: ParsedCitation{
				DocID:      "doc_01",
				Quote:      "three word quote",
				Conclusion: "a conclusion",
			},
			wantValid:      true,
			wantViolations: 0,
		},
		{
			name: "three digit doc id parses but fails validation",
			citation: ParsedCitation{
				DocID:      "doc_001",
				Quote:      "three word quote",
				Conclusion: "a conclusion",
			},
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name: "single digit doc id fails",
			citation: ParsedCitation{
				DocID:      "doc_1",
				Quote:      "three word quote",
				Conclusion: "a conclusion",
			},
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name: "short quote fails",
			citation: ParsedCitation{
				DocID:      "doc_01",
				Quote:      "two words",
				Conclusion: "a conclusion",
			},
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name: "long unspaced quote passes the length arm",
			citation: ParsedCitation{
				DocID:      "doc_01",
				Quote:      "supercalifragilisticexpialidocious",
				Conclusion: "a conclusion",
			},
			wantValid:      true,
			wantViolations: 0,
		},
		{
			name: "cjk quote counts runes not bytes",
			citation: ParsedCitation{
				DocID:      "doc_01",
				Quote:      "这是一段足够长的中文引用内容测试文本哦",
				Conclusion: "结论",
			},
			wantValid:      false,
			wantViolations: 1,
		},
		{
			name: "all rules violated are all reported",
			citation: ParsedCitation{
				DocID:      "doc_1",
				Quote:      "hi",
				Conclusion: "   ",
			},
			wantValid:      false,
			wantViolations: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Validate(tt.citation)
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if len(got.Violations) != tt.wantViolations {
				t.Errorf("Violations = %v (%d), want %d", got.Violations, len(got.Violations), tt.wantViolations)
			}
		})
	}
}
