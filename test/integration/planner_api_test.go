package integration

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"adaptive-rag-core/internal/bootstrap"
	"adaptive-rag-core/internal/config"
	"adaptive-rag-core/internal/dto"
	"adaptive-rag-core/internal/server"
	"adaptive-rag-core/pkg/citation"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// newTestApp boots the full HTTP stack. No database: selection then relies on
// the in-budget short-circuit, which is exactly what these tests exercise.
func newTestApp(t *testing.T) *server.Server {
	t.Helper()

	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	cfg := config.Load()

	container := bootstrap.NewContainer(nil, cfg)
	return server.New(cfg, container)
}

func postJSON(t *testing.T, srv *server.Server, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.GetApp().Test(req, 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestClassifyEndpoint(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/planner/v1/classify", dto.ClassifyRequest{
		Query:         "hello there",
		DocumentCount: 3,
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	classification := data["classification"].(map[string]interface{})
	assert.Equal(t, "simple", classification["complexity"])
	assert.Equal(t, 0.95, classification["confidence"])
	assert.Equal(t, false, classification["requires_context"])
}

func TestClassifyEndpointValidation(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/planner/v1/classify", map[string]interface{}{
		"document_count": 3,
	})

	assert.Equal(t, 400, status, "missing query must be rejected")
	assert.Contains(t, body["message"], "Query")
}

func TestPlanEndpointFastPath(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/planner/v1/plan", dto.PlanRequest{
		Query:           "hi",
		AvailableTokens: 100000,
		Candidates:      []dto.CandidateDocumentDTO{},
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	strategy := data["strategy"].(map[string]interface{})
	assert.Equal(t, "fast_path", strategy["strategy_type"])
	assert.Equal(t, true, strategy["skip_embedding"])
	assert.Nil(t, data["allocation"], "fast path carries no allocation")
}

func TestPlanEndpointComplexQuery(t *testing.T) {
	srv := newTestApp(t)

	candidates := []dto.CandidateDocumentDTO{
		{ID: "doc_01", Content: "first body", Tokens: 4000},
		{ID: "doc_02", Content: "second body", Tokens: 6000},
		{ID: "doc_03", Content: "third body", Tokens: 2000},
		{ID: "doc_04", Content: "fourth body", Tokens: 1000},
	}

	status, body := postJSON(t, srv, "/api/planner/v1/plan", dto.PlanRequest{
		Query:           "Compare the architecture decisions and analyze the trade-offs between the proposed designs",
		AvailableTokens: 50000,
		Candidates:      candidates,
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})

	classification := data["classification"].(map[string]interface{})
	assert.Equal(t, "complex", classification["complexity"])

	strategy := data["strategy"].(map[string]interface{})
	assert.Equal(t, "full_context", strategy["strategy_type"])
	assert.Equal(t, float64(50000), strategy["max_tokens"])

	allocation := data["allocation"].(map[string]interface{})
	assert.Equal(t, float64(50000), allocation["allocated_tokens"])
	assert.Equal(t, float64(4), allocation["max_documents"], "all four candidates fit the window")

	// Whole corpus (13000) fits 50000: everything goes long-context without
	// touching an embedding backend.
	selection := data["selection"].(map[string]interface{})
	assert.Equal(t, "long_context", selection["strategy"])
	assert.Len(t, selection["long_context_docs"], 4)
}

func TestCitationParseEndpoint(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/citation/v1/parse", dto.ParseCitationsRequest{
		Content: `Per the filing <cite doc_id="doc_01" quote="revenue grew 40 percent">revenue grew sharply</cite>.`,
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	xmlCitations := data["xml_citations"].([]interface{})
	assert.Len(t, xmlCitations, 1)

	first := xmlCitations[0].(map[string]interface{})
	assert.Equal(t, "doc_01", first["doc_id"])
	assert.Equal(t, "revenue grew sharply", first["conclusion"])
}

func TestCitationCleanEndpoint(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/citation/v1/clean", dto.CleanTextRequest{
		Content: `A <cite doc_id="doc_01" quote="quote words here">B</cite> C`,
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "A B C", data["clean_text"])

	positions := data["positions"].([]interface{})
	assert.Len(t, positions, 1)
}

func TestCitationValidateXMLEndpoint(t *testing.T) {
	srv := newTestApp(t)

	status, body := postJSON(t, srv, "/api/citation/v1/validate-xml", dto.ValidateXMLCitationRequest{
		Citation: citation.ParsedCitation{
			DocID:      "doc_001",
			Quote:      "three word quote",
			Conclusion: "conclusion",
		},
	})

	assert.Equal(t, 200, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["valid"], "three-digit doc ids parse but do not validate")
	assert.Len(t, data["violations"], 1)
}
