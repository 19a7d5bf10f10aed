package strategy

import (
	"testing"

	"adaptive-rag-core/pkg/rag/classifier"
)

func TestSelectStrategy(t *testing.T) {
	r := NewRouter(DefaultConfig())

	tests := []struct {
		name            string
		complexity      classifier.Complexity
		requiresContext bool
		availableTokens int
		documentCount   int
		forceContext    bool
		wantType        Type
		wantMaxTokens   int
	}{
		{
			name:            "no documents always fast path",
			complexity:      classifier.ComplexityComplex,
			requiresContext: true,
			availableTokens: 100000,
			documentCount:   0,
			wantType:        TypeFastPath,
			wantMaxTokens:   0,
		},
		{
			name:            "simple without context requirement",
			complexity:      classifier.ComplexitySimple,
			availableTokens: 100000,
			documentCount:   5,
			wantType:        TypeFastPath,
			wantMaxTokens:   0,
		},
		{
			name:            "simple with context requirement",
			complexity:      classifier.ComplexitySimple,
			requiresContext: true,
			availableTokens: 100000,
			documentCount:   5,
			wantType:        TypeLiteContext,
			wantMaxTokens:   15000, // half the lite-context ceiling
		},
		{
			name:            "simple with force context",
			complexity:      classifier.ComplexitySimple,
			availableTokens: 100000,
			documentCount:   5,
			forceContext:    true,
			wantType:        TypeFullContext,
			wantMaxTokens:   100000,
		},
		{
			name:            "moderate query",
			complexity:      classifier.ComplexityModerate,
			requiresContext: true,
			availableTokens: 100000,
			documentCount:   3,
			wantType:        TypeLiteContext,
			wantMaxTokens:   30000,
		},
		{
			name:            "moderate query in a small window",
			complexity:      classifier.ComplexityModerate,
			requiresContext: true,
			availableTokens: 8000,
			documentCount:   3,
			wantType:        TypeLiteContext,
			wantMaxTokens:   8000,
		},
		{
			name:            "complex query takes everything",
			complexity:      classifier.ComplexityComplex,
			requiresContext: true,
			availableTokens: 50000,
			documentCount:   4,
			wantType:        TypeFullContext,
			wantMaxTokens:   50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classification := classifier.Classification{
				Complexity:      tt.complexity,
				RequiresContext: tt.requiresContext,
			}

			got := r.SelectStrategy(classification, tt.availableTokens, tt.documentCount, tt.forceContext)

			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.MaxTokens != tt.wantMaxTokens {
				t.Errorf("MaxTokens = %d, want %d", got.MaxTokens, tt.wantMaxTokens)
			}
			if got.Reasoning == "" {
				t.Error("Reasoning must never be empty")
			}
		})
	}
}

func TestSelectStrategyFastPathDisabled(t *testing.T) {
	r := NewRouter(Config{LiteContextMaxTokens: 30000, EnableFastPath: false})

	classification := classifier.Classification{Complexity: classifier.ComplexitySimple}
	got := r.SelectStrategy(classification, 100000, 5, false)

	if got.Type != TypeLiteContext {
		t.Errorf("Type = %v, want %v when fast path is disabled", got.Type, TypeLiteContext)
	}
	if got.MaxTokens != 15000 {
		t.Errorf("MaxTokens = %d, want 15000", got.MaxTokens)
	}
}

func TestStrategyKnobsAreConsistent(t *testing.T) {
	// The per-type knobs are part of the routing contract: fast path never
	// touches retrieval or embeddings, hybrid uses both paths.
	for _, typ := range []Type{TypeFastPath, TypeLiteContext, TypeFullContext, TypeHybrid} {
		s := DefaultsFor(typ)
		if s.Type != typ {
			t.Errorf("DefaultsFor(%v).Type = %v", typ, s.Type)
		}
	}

	fast := DefaultsFor(TypeFastPath)
	if fast.UseRetrieval || fast.UseLongContext || !fast.SkipEmbedding || fast.TopK != 0 {
		t.Errorf("fast path knobs = %+v, want everything off", fast)
	}

	hybrid := DefaultsFor(TypeHybrid)
	if !hybrid.UseRetrieval || !hybrid.UseLongContext || hybrid.TopK != 10 {
		t.Errorf("hybrid knobs = %+v, want retrieval and long context with top_k 10", hybrid)
	}

	unknown := DefaultsFor(Type("mystery"))
	if unknown.Type != TypeLiteContext {
		t.Errorf("unknown type falls back to %v, want %v", unknown.Type, TypeLiteContext)
	}
}

func TestShouldSkipRAG(t *testing.T) {
	if !ShouldSkipRAG(DefaultsFor(TypeFastPath)) {
		t.Error("fast path must skip RAG")
	}
	if ShouldSkipRAG(DefaultsFor(TypeLiteContext)) {
		t.Error("lite context must not skip RAG")
	}
}
