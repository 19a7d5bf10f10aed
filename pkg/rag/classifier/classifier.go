package classifier

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Complexity buckets how much context a query is expected to need.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Classification is the outcome of rule-based query analysis.
// EstimatedTokensNeeded is -1 for unlimited.
type Classification struct {
	Complexity            Complexity `json:"complexity"`
	RequiresContext       bool       `json:"requires_context"`
	EstimatedTokensNeeded int        `json:"estimated_tokens_needed"`
	Confidence            float64    `json:"confidence"`
	Reasoning             string     `json:"reasoning"`
	DetectedPatterns      []string   `json:"detected_patterns"`
}

// estimatedTokens maps complexity to the token budget the strategy layer
// should assume. Unknown complexities fall back to the moderate entry.
var estimatedTokens = map[Complexity]int{
	ComplexitySimple:   0,
	ComplexityModerate: 20000,
	ComplexityComplex:  -1,
}

const defaultEstimatedTokens = 20000

func estimatedTokensFor(c Complexity) int {
	if v, ok := estimatedTokens[c]; ok {
		return v
	}
	return defaultEstimatedTokens
}

// Config encapsulates classifier thresholds
type Config struct {
	SimpleMaxLength   int
	ModerateMaxLength int
}

// DefaultConfig returns default classifier thresholds
func DefaultConfig() Config {
	return Config{
		SimpleMaxLength:   20,
		ModerateMaxLength: 100,
	}
}

// Classifier buckets queries into complexity classes using precompiled
// pattern tables. It is pure and safe to share across requests.
type Classifier struct {
	cfg Config

	greetingPatterns      []*regexp.Regexp
	clarificationPatterns []*regexp.Regexp
	complexPatterns       []*regexp.Regexp
	domainPatterns        []*regexp.Regexp
}

func New(cfg Config) *Classifier {
	if cfg.SimpleMaxLength <= 0 {
		cfg.SimpleMaxLength = 20
	}
	if cfg.ModerateMaxLength <= 0 {
		cfg.ModerateMaxLength = 100
	}
	return &Classifier{
		cfg:                   cfg,
		greetingPatterns:      compileAll(greetingSources),
		clarificationPatterns: compileAll(clarificationSources),
		complexPatterns:       compileAll(complexIndicatorSources),
		domainPatterns:        compileAll(domainKeywordSources),
	}
}

// All matching is case-insensitive and Unicode-aware; the sources below mix
// Latin and CJK forms on purpose.
var greetingSources = []string{
	`^\s*(hi|hello|hey|yo|howdy|greetings)\b`,
	`^\s*good\s+(morning|afternoon|evening|day)\b`,
	`^\s*(thanks|thank you|thx)\b`,
	`^\s*(你好|您好|嗨|哈喽|早上好|下午好|晚上好|谢谢)`,
	`^\s*(こんにちは|おはよう|ありがとう)`,
	`^\s*(hola|bonjour|hallo|ciao)\b`,
}

var clarificationSources = []string{
	`what\s+do\s+you\s+mean`,
	`can\s+you\s+(clarify|rephrase|repeat)`,
	`i\s+(don'?t|do\s+not)\s+understand`,
	`^\s*(huh|what|pardon|sorry)\s*\??\s*$`,
	`(什么意思|没听懂|再说一遍)`,
}

var complexIndicatorSources = []string{
	`\b(compare|comparison|contrast|versus|vs\.?)\b`,
	`\b(analy[sz]e|analysis|evaluate|assess)\b`,
	`\b(explain\s+why|explain\s+how|reason\s+about)\b`,
	`\bdifference\s+between\b`,
	`\b(relationship|correlation|impact|implication)s?\b`,
	`\b(summari[sz]e|synthesi[sz]e|aggregate)\b.*\b(all|every|entire)\b`,
	`\b(trade-?offs?|pros\s+and\s+cons)\b`,
	`\bstep\s+by\s+step\b`,
	`\b(architecture|design\s+decision|root\s+cause)\b`,
	`(比较|分析|总结|为什么|区别|关系|影响|评估)`,
}

var domainKeywordSources = []string{
	`\b(algorithm|protocol|schema|database|index|pipeline)\b`,
	`\b(contract|clause|regulation|compliance|liability)\b`,
	`\b(revenue|forecast|quarterly|margin|valuation)\b`,
	`\b(diagnosis|dosage|clinical|pathology)\b`,
	`\b(theorem|proof|derivation|hypothesis)\b`,
	`(合同|条款|法规|营收|财报|诊断|算法|协议)`,
}

func compileAll(sources []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+src))
	}
	return patterns
}

// Classify buckets a query by complexity. It never fails and performs no I/O.
// chatHistory is accepted for interface stability; the current rule set does
// not consult it.
func (c *Classifier) Classify(query string, chatHistory []string, documentCount int) Classification {
	_ = chatHistory

	// 1. Greetings never need context.
	if matched, pattern := firstMatch(c.greetingPatterns, query); matched {
		return c.result(ComplexitySimple, false, 0.95, "greeting detected", []string{pattern})
	}

	// 2. Clarification follow-ups reuse whatever context the conversation has.
	if matched, pattern := firstMatch(c.clarificationPatterns, query); matched {
		return c.result(ComplexitySimple, false, 0.90, "clarification request detected", []string{pattern})
	}

	complexMatches := allMatches(c.complexPatterns, query)
	domainMatches := allMatches(c.domainPatterns, query)
	detected := append(append([]string{}, complexMatches...), domainMatches...)

	queryLen := utf8.RuneCountInString(query)

	// 3. Short queries: simple unless documents exist to consult.
	if queryLen <= c.cfg.SimpleMaxLength && len(complexMatches) == 0 {
		if documentCount == 0 {
			return c.result(ComplexitySimple, false, 0.85, "short query without documents", detected)
		}
		return c.result(ComplexityModerate, true, 0.75, "short query with documents available", detected)
	}

	// 4. Medium queries: pattern density decides.
	if queryLen <= c.cfg.ModerateMaxLength {
		if len(complexMatches) >= 2 || len(domainMatches) >= 2 {
			return c.result(ComplexityComplex, true, 0.80,
				fmt.Sprintf("medium query with %d complex and %d domain indicators", len(complexMatches), len(domainMatches)),
				detected)
		}
		return c.result(ComplexityModerate, documentCount > 0, 0.80, "medium query with low indicator density", detected)
	}

	// 5. Long queries are assumed complex.
	return c.result(ComplexityComplex, true, 0.85, "long query", detected)
}

func (c *Classifier) result(complexity Complexity, requiresContext bool, confidence float64, reasoning string, detected []string) Classification {
	if detected == nil {
		detected = []string{}
	}
	return Classification{
		Complexity:            complexity,
		RequiresContext:       requiresContext,
		EstimatedTokensNeeded: estimatedTokensFor(complexity),
		Confidence:            confidence,
		Reasoning:             reasoning,
		DetectedPatterns:      detected,
	}
}

func firstMatch(patterns []*regexp.Regexp, query string) (bool, string) {
	for _, p := range patterns {
		if p.MatchString(query) {
			return true, p.String()
		}
	}
	return false, ""
}

func allMatches(patterns []*regexp.Regexp, query string) []string {
	var matched []string
	for _, p := range patterns {
		if p.MatchString(query) {
			matched = append(matched, p.String())
		}
	}
	return matched
}
