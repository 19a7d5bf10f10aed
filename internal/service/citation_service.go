package service

import (
	"context"

	"adaptive-rag-core/internal/dto"
	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/pkg/citation"
)

// CitationService exposes batch citation parsing, cleaning and validation.
// Streaming parse state lives per websocket connection, not here.
type CitationService struct {
	parser    *citation.Parser
	xmlParser *citation.XMLParser
	logger    logger.ILogger
}

func NewCitationService(parser *citation.Parser, xmlParser *citation.XMLParser, log logger.ILogger) *CitationService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CitationService{
		parser:    parser,
		xmlParser: xmlParser,
		logger:    log,
	}
}

func (s *CitationService) Parse(ctx context.Context, req *dto.ParseCitationsRequest) (*dto.ParseCitationsResponse, error) {
	return &dto.ParseCitationsResponse{
		Citations:    s.parser.ExtractCitations(req.Content),
		XMLCitations: s.xmlParser.Parse(req.Content),
	}, nil
}

func (s *CitationService) CleanText(ctx context.Context, req *dto.CleanTextRequest) (*dto.CleanTextResponse, error) {
	cleanText, positions := s.xmlParser.GetCitationPositions(req.Content)
	return &dto.CleanTextResponse{
		CleanText: cleanText,
		Positions: positions,
	}, nil
}

func (s *CitationService) Validate(ctx context.Context, req *dto.ValidateCitationRequest) (*dto.ValidateCitationResponse, error) {
	valid := s.parser.ValidateCitation(req.Citation, req.ExpectedDocID, req.MaxChar)
	return &dto.ValidateCitationResponse{Valid: valid}, nil
}

func (s *CitationService) ValidateXML(ctx context.Context, req *dto.ValidateXMLCitationRequest) (*dto.ValidateXMLCitationResponse, error) {
	result := s.xmlParser.Validate(req.Citation)
	return &dto.ValidateXMLCitationResponse{
		Valid:      result.Valid,
		Violations: result.Violations,
	}, nil
}

func (s *CitationService) GenerateMetadata(ctx context.Context, req *dto.CitationMetadataRequest) (*dto.CitationMetadataResponse, error) {
	citations := s.parser.GenerateCitationMetadata(req.Content, req.DocumentID, req.PageNumber)
	return &dto.CitationMetadataResponse{Citations: citations}, nil
}
