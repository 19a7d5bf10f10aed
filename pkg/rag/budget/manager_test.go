package budget

import (
	"testing"

	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/store"
)

func classificationFor(c classifier.Complexity) classifier.Classification {
	est := map[classifier.Complexity]int{
		classifier.ComplexitySimple:   0,
		classifier.ComplexityModerate: 20000,
		classifier.ComplexityComplex:  -1,
	}
	return classifier.Classification{
		Complexity:            c,
		EstimatedTokensNeeded: est[c],
	}
}

func TestAllocate(t *testing.T) {
	m := NewManager()

	tests := []struct {
		name          string
		complexity    classifier.Complexity
		maxTokens     int
		forceMinimum  bool
		wantAllocated int
	}{
		{
			name:          "simple gets nothing",
			complexity:    classifier.ComplexitySimple,
			maxTokens:     100000,
			wantAllocated: 0,
		},
		{
			name:          "moderate takes fifteen percent",
			complexity:    classifier.ComplexityModerate,
			maxTokens:     100000,
			wantAllocated: 15000,
		},
		{
			name:          "moderate capped by absolute limit",
			complexity:    classifier.ComplexityModerate,
			maxTokens:     400000,
			wantAllocated: 20000, // 60000 by ratio, 30000 by cap, 20000 by estimated need
		},
		{
			name:          "complex takes the full window",
			complexity:    classifier.ComplexityComplex,
			maxTokens:     50000,
			wantAllocated: 50000,
		},
		{
			name:          "negative window clamps to zero",
			complexity:    classifier.ComplexityComplex,
			maxTokens:     -5,
			wantAllocated: 0,
		},
		{
			name:          "force minimum lifts tiny allocations",
			complexity:    classifier.ComplexityModerate,
			maxTokens:     4000, // 600 by ratio
			forceMinimum:  true,
			wantAllocated: 1000,
		},
		{
			name:          "force minimum does not create allocation from zero",
			complexity:    classifier.ComplexitySimple,
			maxTokens:     4000,
			forceMinimum:  true,
			wantAllocated: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Allocate(classificationFor(tt.complexity), nil, tt.maxTokens, tt.forceMinimum)

			if got.AllocatedTokens != tt.wantAllocated {
				t.Errorf("AllocatedTokens = %d, want %d", got.AllocatedTokens, tt.wantAllocated)
			}
			if got.AllocatedTokens < 0 {
				t.Errorf("AllocatedTokens = %d, must never be negative", got.AllocatedTokens)
			}
			if tt.maxTokens > 0 && got.AllocatedTokens > tt.maxTokens {
				t.Errorf("AllocatedTokens = %d exceeds window %d", got.AllocatedTokens, tt.maxTokens)
			}
			if got.PriorityOrder == nil {
				t.Error("PriorityOrder should never be nil")
			}
		})
	}
}

func TestAllocateUtilizationRatio(t *testing.T) {
	m := NewManager()

	got := m.Allocate(classificationFor(classifier.ComplexityModerate), nil, 100000, false)
	if got.UtilizationRatio != 0.15 {
		t.Errorf("UtilizationRatio = %v, want 0.15", got.UtilizationRatio)
	}

	got = m.Allocate(classificationFor(classifier.ComplexitySimple), nil, 0, false)
	if got.UtilizationRatio != 0.0 {
		t.Errorf("UtilizationRatio = %v, want 0.0 for empty window", got.UtilizationRatio)
	}
}

func TestFitDocuments(t *testing.T) {
	docs := []store.Document{
		{ID: "doc_01", TokenCount: 8000},
		{ID: "doc_02", TokenCount: 2000},
		{ID: "doc_03", TokenCount: 5000},
		{ID: "doc_04", TokenCount: 1000},
	}

	tests := []struct {
		name      string
		allocated int
		wantOrder []string
	}{
		{
			name:      "all fit, smallest first",
			allocated: 20000,
			wantOrder: []string{"doc_04", "doc_02", "doc_03", "doc_01"},
		},
		{
			name:      "stops at first overflow",
			allocated: 9000,
			// 1000 + 2000 + 5000 = 8000 fits; doc_01 would overflow and the
			// walk ends there even though nothing smaller remains.
			wantOrder: []string{"doc_04", "doc_02", "doc_03"},
		},
		{
			name:      "zero budget fits nothing",
			allocated: 0,
			wantOrder: []string{},
		},
		{
			name:      "budget below smallest fits nothing",
			allocated: 500,
			wantOrder: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, _ := fitDocuments(docs, tt.allocated)

			if len(order) != len(tt.wantOrder) {
				t.Fatalf("order = %v, want %v", order, tt.wantOrder)
			}
			for i := range order {
				if order[i] != tt.wantOrder[i] {
					t.Errorf("order[%d] = %s, want %s", i, order[i], tt.wantOrder[i])
				}
			}
		})
	}
}

func TestFitDocumentsGreedyCutoffIsDeterministic(t *testing.T) {
	// The walk ends at the first overflow even when 500 tokens of budget
	// remain. Sums under the greedy rule must stay reproducible.
	docs := []store.Document{
		{ID: "doc_01", TokenCount: 1000},
		{ID: "doc_02", TokenCount: 6000},
		{ID: "doc_03", TokenCount: 6000},
	}

	order, total := fitDocuments(docs, 7500)
	if len(order) != 2 {
		t.Fatalf("fit %d documents, want 2", len(order))
	}
	if total != 7000 {
		t.Errorf("total = %d, want 7000", total)
	}
}

func TestAllocateUnknownComplexityFallsBack(t *testing.T) {
	m := NewManager()

	got := m.Allocate(classifier.Classification{Complexity: "mystery"}, nil, 100000, false)
	// Unknown complexities use the moderate defaults: 15% ratio, 30000 cap.
	if got.AllocatedTokens != 15000 {
		t.Errorf("AllocatedTokens = %d, want 15000", got.AllocatedTokens)
	}
}
