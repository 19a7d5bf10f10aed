package store

// Document represents a generic document/content structure for the RAG planner
type Document struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Score      float32                `json:"score"`
	TokenCount int                    `json:"token_count"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// HasUsableContent reports whether the document carries text worth planning for.
// Documents without content are excluded from selection entirely.
func (d Document) HasUsableContent() bool {
	return d.Content != ""
}
