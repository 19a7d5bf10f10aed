package strategy

import (
	"fmt"

	"adaptive-rag-core/pkg/rag/classifier"
)

// Type names the concrete execution plan handed to the orchestration layer.
type Type string

const (
	TypeFastPath    Type = "fast_path"
	TypeLiteContext Type = "lite_context"
	TypeFullContext Type = "full_context"
	TypeHybrid      Type = "hybrid"
)

// RAGStrategy is one concrete execution plan. MaxTokens is -1 for unlimited.
type RAGStrategy struct {
	Type           Type   `json:"strategy_type"`
	MaxTokens      int    `json:"max_tokens"`
	UseRetrieval   bool   `json:"use_retrieval"`
	UseLongContext bool   `json:"use_long_context"`
	TopK           int    `json:"top_k"`
	SkipEmbedding  bool   `json:"skip_embedding"`
	Reasoning      string `json:"reasoning"`
}

// defaults carries the fixed per-type knobs; only MaxTokens and Reasoning are
// overridden per call. Unknown types fall back to the lite-context entry.
var defaults = map[Type]RAGStrategy{
	TypeFastPath: {
		Type:           TypeFastPath,
		MaxTokens:      0,
		UseRetrieval:   false,
		UseLongContext: false,
		TopK:           0,
		SkipEmbedding:  true,
	},
	TypeLiteContext: {
		Type:           TypeLiteContext,
		MaxTokens:      -1,
		UseRetrieval:   true,
		UseLongContext: false,
		TopK:           5,
		SkipEmbedding:  false,
	},
	TypeFullContext: {
		Type:           TypeFullContext,
		MaxTokens:      -1,
		UseRetrieval:   false,
		UseLongContext: true,
		TopK:           0,
		SkipEmbedding:  false,
	},
	TypeHybrid: {
		Type:           TypeHybrid,
		MaxTokens:      -1,
		UseRetrieval:   true,
		UseLongContext: true,
		TopK:           10,
		SkipEmbedding:  false,
	},
}

// DefaultsFor returns the fixed plan template for a strategy type,
// falling back to lite-context for unknown types.
func DefaultsFor(t Type) RAGStrategy {
	if s, ok := defaults[t]; ok {
		return s
	}
	return defaults[TypeLiteContext]
}

// Config encapsulates router parameters
type Config struct {
	LiteContextMaxTokens int
	EnableFastPath       bool
}

// DefaultConfig returns default router parameters
func DefaultConfig() Config {
	return Config{
		LiteContextMaxTokens: 30000,
		EnableFastPath:       true,
	}
}

// Router maps a classification onto a concrete execution plan.
// It is stateless and safe to share.
type Router struct {
	cfg Config
}

func NewRouter(cfg Config) *Router {
	if cfg.LiteContextMaxTokens <= 0 {
		cfg.LiteContextMaxTokens = 30000
	}
	return &Router{cfg: cfg}
}

// SelectStrategy produces the execution plan for one request. It never fails.
func (r *Router) SelectStrategy(
	classification classifier.Classification,
	availableTokens int,
	documentCount int,
	forceContext bool,
) RAGStrategy {

	// Without documents there is nothing to retrieve or load.
	if documentCount == 0 {
		return r.plan(TypeFastPath, 0, "no documents available")
	}

	if classification.Complexity == classifier.ComplexitySimple && !forceContext {
		if r.cfg.EnableFastPath && !classification.RequiresContext {
			return r.plan(TypeFastPath, 0, "simple query without context requirement")
		}
		return r.plan(TypeLiteContext,
			minTokens(r.cfg.LiteContextMaxTokens/2, availableTokens),
			"simple query with context requirement")
	}

	if classification.Complexity == classifier.ComplexityModerate {
		return r.plan(TypeLiteContext,
			minTokens(r.cfg.LiteContextMaxTokens, availableTokens),
			"moderate query")
	}

	return r.plan(TypeFullContext, availableTokens,
		fmt.Sprintf("complexity=%s forceContext=%v", classification.Complexity, forceContext))
}

// ShouldSkipRAG reports whether retrieval and context assembly can be skipped
// entirely for this plan.
func ShouldSkipRAG(s RAGStrategy) bool {
	return s.Type == TypeFastPath
}

func (r *Router) plan(t Type, maxTokens int, reasoning string) RAGStrategy {
	s := DefaultsFor(t)
	s.MaxTokens = maxTokens
	s.Reasoning = reasoning
	return s
}

func minTokens(a, b int) int {
	if a < b {
		return a
	}
	return b
}
