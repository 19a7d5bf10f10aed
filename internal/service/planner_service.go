package service

import (
	"context"

	"adaptive-rag-core/internal/dto"
	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/pkg/events"
	pktNats "adaptive-rag-core/pkg/nats"
	"adaptive-rag-core/pkg/rag"
	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/store"
)

// PlannerService exposes the planning pipeline to the transport layer and
// publishes each routing decision as a PLAN_SELECTED event. The publisher is
// optional; without one, decisions are simply not announced.
type PlannerService struct {
	planner          *rag.Planner
	classifier       *classifier.Classifier
	publisher        *pktNats.Publisher
	logger           logger.ILogger
	minContextTokens int
}

func NewPlannerService(
	planner *rag.Planner,
	cls *classifier.Classifier,
	publisher *pktNats.Publisher,
	log logger.ILogger,
	minContextTokens int,
) *PlannerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PlannerService{
		planner:          planner,
		classifier:       cls,
		publisher:        publisher,
		logger:           log,
		minContextTokens: minContextTokens,
	}
}

func (s *PlannerService) Classify(ctx context.Context, req *dto.ClassifyRequest) (*dto.ClassifyResponse, error) {
	classification := s.classifier.Classify(req.Query, req.ChatHistory, req.DocumentCount)
	return &dto.ClassifyResponse{Classification: classification}, nil
}

func (s *PlannerService) Plan(ctx context.Context, req *dto.PlanRequest) (*dto.PlanResponse, error) {
	candidates := make([]store.Document, len(req.Candidates))
	for i, c := range req.Candidates {
		candidates[i] = store.Document{
			ID:         c.ID,
			Title:      c.Title,
			Content:    c.Content,
			TokenCount: c.Tokens,
		}
	}

	plan, err := s.planner.BuildPlan(ctx, rag.PlanRequest{
		Query:            req.Query,
		ChatHistory:      req.ChatHistory,
		AvailableTokens:  req.AvailableTokens,
		ForceContext:     req.ForceContext,
		ForceMinimum:     req.ForceMinimum,
		Candidates:       candidates,
		MinContextTokens: s.minContextTokens,
	})
	if err != nil {
		s.logger.Error("PLANNER_SERVICE", "Plan build failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.publishPlanSelected(ctx, req, plan)

	return &dto.PlanResponse{
		Classification: plan.Classification,
		Strategy:       plan.Strategy,
		Allocation:     plan.Allocation,
		Selection:      plan.Selection,
	}, nil
}

// publishPlanSelected is best-effort: a broker outage must never fail a plan.
func (s *PlannerService) publishPlanSelected(ctx context.Context, req *dto.PlanRequest, plan *rag.Plan) {
	if s.publisher == nil {
		return
	}

	event := events.NewPlanSelected(
		req.Query,
		string(plan.Classification.Complexity),
		string(plan.Strategy.Type),
		plan.Strategy.MaxTokens,
		len(req.Candidates),
	)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("PLANNER_SERVICE", "Failed to publish PLAN_SELECTED event", map[string]interface{}{"error": err.Error()})
	}
}
