package budget

import (
	"fmt"
	"sort"

	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/store"
)

// Allocation is the budget decision for one request.
type Allocation struct {
	AllocatedTokens  int      `json:"allocated_tokens"`
	MaxDocuments     int      `json:"max_documents"`
	PriorityOrder    []string `json:"priority_order"`
	Reasoning        string   `json:"reasoning"`
	UtilizationRatio float64  `json:"utilization_ratio"`
}

// contextRatios maps complexity to the share of the window spent on context.
// Unknown complexities fall back to the moderate entry.
var contextRatios = map[classifier.Complexity]float64{
	classifier.ComplexitySimple:   0.0,
	classifier.ComplexityModerate: 0.15,
	classifier.ComplexityComplex:  1.0,
}

const defaultContextRatio = 0.15

// absoluteLimits caps allocation per complexity. 0 means nothing is allocated,
// -1 means no cap beyond the ratio.
var absoluteLimits = map[classifier.Complexity]int{
	classifier.ComplexitySimple:   0,
	classifier.ComplexityModerate: 30000,
	classifier.ComplexityComplex:  -1,
}

const defaultAbsoluteLimit = 30000

// ForceMinimumFloor is the smallest non-zero allocation granted when the
// caller insists on some context.
const ForceMinimumFloor = 1000

func ratioFor(c classifier.Complexity) float64 {
	if v, ok := contextRatios[c]; ok {
		return v
	}
	return defaultContextRatio
}

func limitFor(c classifier.Complexity) int {
	if v, ok := absoluteLimits[c]; ok {
		return v
	}
	return defaultAbsoluteLimit
}

// Manager performs token-budget arithmetic and document-fit packing.
// It is stateless and safe to share.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Allocate decides how many context tokens a request gets and which candidate
// documents fit inside that budget. Inputs are sanitized by clamping; this
// function never fails.
func (m *Manager) Allocate(
	classification classifier.Classification,
	candidates []store.Document,
	maxTokens int,
	forceMinimum bool,
) Allocation {

	if maxTokens < 0 {
		maxTokens = 0
	}

	ratio := ratioFor(classification.Complexity)
	allocated := int(float64(maxTokens) * ratio)

	limit := limitFor(classification.Complexity)
	switch {
	case limit == 0:
		allocated = 0
	case limit > 0 && allocated > limit:
		allocated = limit
	}
	// limit == -1: ratio alone decides

	if classification.EstimatedTokensNeeded > 0 && allocated > classification.EstimatedTokensNeeded {
		allocated = classification.EstimatedTokensNeeded
	}

	if forceMinimum && allocated > 0 && allocated < ForceMinimumFloor {
		allocated = ForceMinimumFloor
	}

	priorityOrder, usedTokens := fitDocuments(candidates, allocated)

	utilization := 0.0
	if maxTokens > 0 {
		utilization = float64(allocated) / float64(maxTokens)
	}

	return Allocation{
		AllocatedTokens: allocated,
		MaxDocuments:    len(priorityOrder),
		PriorityOrder:   priorityOrder,
		Reasoning: fmt.Sprintf("complexity=%s ratio=%.2f limit=%d: allocated %d of %d tokens, %d of %d documents fit (%d tokens used)",
			classification.Complexity, ratio, limit, allocated, maxTokens, len(priorityOrder), len(candidates), usedTokens),
		UtilizationRatio: utilization,
	}
}

// fitDocuments packs candidates smallest-first until one would overflow the
// budget, then stops. It deliberately does not skip ahead to a smaller later
// candidate: the cut-off is deterministic, not optimal, so that the same
// corpus always produces the same priority order.
func fitDocuments(candidates []store.Document, allocated int) ([]string, int) {
	if allocated <= 0 || len(candidates) == 0 {
		return []string{}, 0
	}

	sorted := make([]store.Document, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TokenCount < sorted[j].TokenCount
	})

	order := []string{}
	total := 0
	for _, doc := range sorted {
		if total+doc.TokenCount > allocated {
			break
		}
		order = append(order, doc.ID)
		total += doc.TokenCount
	}

	return order, total
}
