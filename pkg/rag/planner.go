package rag

import (
	"context"

	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/pkg/rag/budget"
	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/rag/selector"
	"adaptive-rag-core/pkg/rag/strategy"
	"adaptive-rag-core/pkg/store"
)

// Plan is the full decision for one request: what the query is, how it will
// be executed, how much budget it gets, and which documents ride along.
// Allocation and Selection are nil when the chosen strategy skips RAG.
type Plan struct {
	Classification classifier.Classification `json:"classification"`
	Strategy       strategy.RAGStrategy      `json:"strategy"`
	Allocation     *budget.Allocation        `json:"allocation,omitempty"`
	Selection      *selector.Result          `json:"selection,omitempty"`
}

// PlanRequest carries everything the planner needs for one decision.
type PlanRequest struct {
	Query            string
	ChatHistory      []string
	AvailableTokens  int
	ForceContext     bool
	ForceMinimum     bool
	Candidates       []store.Document
	MinContextTokens int
}

// Planner wires the classifier, budget manager, strategy router and document
// selector into a single decision pipeline. All collaborators are injected;
// selector may be nil when no embedding backend is configured, in which case
// plans that need similarity ranking fall back to allocation only.
type Planner struct {
	classifier *classifier.Classifier
	budget     *budget.Manager
	router     *strategy.Router
	selector   *selector.Selector
	logger     logger.ILogger
}

func NewPlanner(
	cls *classifier.Classifier,
	mgr *budget.Manager,
	router *strategy.Router,
	sel *selector.Selector,
	log logger.ILogger,
) *Planner {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Planner{
		classifier: cls,
		budget:     mgr,
		router:     router,
		selector:   sel,
		logger:     log,
	}
}

// BuildPlan runs the full pipeline: classify, route, budget, select.
// Classification, routing and budgeting never fail; only document selection
// can, and only when it has to rank by similarity.
func (p *Planner) BuildPlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	classification := p.classifier.Classify(req.Query, req.ChatHistory, len(req.Candidates))

	strat := p.router.SelectStrategy(classification, req.AvailableTokens, len(req.Candidates), req.ForceContext)

	plan := &Plan{
		Classification: classification,
		Strategy:       strat,
	}

	if strategy.ShouldSkipRAG(strat) {
		p.logger.Info("PLANNER", "Fast path selected, skipping allocation", map[string]interface{}{
			"complexity": string(classification.Complexity),
			"reasoning":  strat.Reasoning,
		})
		return plan, nil
	}

	allocation := p.budget.Allocate(classification, req.Candidates, strat.MaxTokens, req.ForceMinimum)
	plan.Allocation = &allocation

	if strat.UseLongContext && p.selector != nil {
		sel, err := p.selector.SelectDocumentsForQuery(ctx, req.Query, req.Candidates, strat.MaxTokens, req.MinContextTokens)
		if err != nil {
			return nil, err
		}
		plan.Selection = sel
	}

	p.logger.Info("PLANNER", "Plan built", map[string]interface{}{
		"complexity":       string(classification.Complexity),
		"strategy":         string(strat.Type),
		"allocated_tokens": allocation.AllocatedTokens,
		"has_selection":    plan.Selection != nil,
	})

	return plan, nil
}
