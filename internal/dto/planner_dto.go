package dto

import (
	"adaptive-rag-core/pkg/rag/budget"
	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/rag/selector"
	"adaptive-rag-core/pkg/rag/strategy"
)

type ClassifyRequest struct {
	Query         string   `json:"query" validate:"required"`
	ChatHistory   []string `json:"chat_history,omitempty"`
	DocumentCount int      `json:"document_count" validate:"gte=0"`
}

type ClassifyResponse struct {
	Classification classifier.Classification `json:"classification"`
}

// CandidateDocumentDTO is the caller-provided view of one candidate.
// Tokens may be 0; the engine estimates missing counts.
type CandidateDocumentDTO struct {
	ID      string `json:"id" validate:"required"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Tokens  int    `json:"tokens,omitempty" validate:"gte=0"`
}

type PlanRequest struct {
	Query           string                 `json:"query" validate:"required"`
	ChatHistory     []string               `json:"chat_history,omitempty"`
	AvailableTokens int                    `json:"available_tokens" validate:"gte=-1"`
	ForceContext    bool                   `json:"force_context"`
	ForceMinimum    bool                   `json:"force_minimum"`
	Candidates      []CandidateDocumentDTO `json:"candidates" validate:"dive"`
}

type PlanResponse struct {
	Classification classifier.Classification `json:"classification"`
	Strategy       strategy.RAGStrategy      `json:"strategy"`
	Allocation     *budget.Allocation        `json:"allocation,omitempty"`
	Selection      *selector.Result          `json:"selection,omitempty"`
}
