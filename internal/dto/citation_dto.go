package dto

import "adaptive-rag-core/pkg/citation"

type ParseCitationsRequest struct {
	Content string `json:"content" validate:"required"`
}

type ParseCitationsResponse struct {
	Citations    []citation.Citation       `json:"citations"`
	XMLCitations []citation.ParsedCitation `json:"xml_citations"`
}

type CleanTextRequest struct {
	Content string `json:"content" validate:"required"`
}

type CleanTextResponse struct {
	CleanText string                      `json:"clean_text"`
	Positions []citation.CitationPosition `json:"positions"`
}

type ValidateCitationRequest struct {
	Citation      citation.Citation `json:"citation"`
	ExpectedDocID string            `json:"expected_doc_id" validate:"required"`
	MaxChar       int               `json:"max_char,omitempty" validate:"gte=0"`
}

type ValidateCitationResponse struct {
	Valid bool `json:"valid"`
}

type ValidateXMLCitationRequest struct {
	Citation citation.ParsedCitation `json:"citation"`
}

type ValidateXMLCitationResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

type CitationMetadataRequest struct {
	Content    string `json:"content" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	PageNumber int    `json:"page_number" validate:"gte=0"`
}

type CitationMetadataResponse struct {
	Citations []citation.Citation `json:"citations"`
}

// StreamFrame is one websocket frame sent back during streaming parse.
type StreamFrame struct {
	Type      string                    `json:"type"` // "text" | "citations" | "flush"
	Text      string                    `json:"text,omitempty"`
	Citations []citation.ParsedCitation `json:"citations,omitempty"`
}
