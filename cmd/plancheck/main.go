package main

import (
	"encoding/json"
	"fmt"

	"adaptive-rag-core/pkg/rag/budget"
	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/rag/strategy"
	"adaptive-rag-core/pkg/store"

	"github.com/fatih/color"
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

type scenario struct {
	name            string
	query           string
	documentCount   int
	availableTokens int
	forceContext    bool
	forceMinimum    bool
}

func main() {
	color.Cyan("🚀 Plan Check: running sample queries through the planning pipeline\n")

	cls := classifier.New(classifier.DefaultConfig())
	router := strategy.NewRouter(strategy.DefaultConfig())
	manager := budget.NewManager()

	scenarios := []scenario{
		{name: "Greeting", query: "你好", documentCount: 5, availableTokens: 100000},
		{name: "Moderate lookup", query: "What did the meeting notes say about Q3?", documentCount: 3, availableTokens: 100000},
		{name: "Complex analysis", query: "Compare the contract terms and analyze the liability implications across all documents", documentCount: 4, availableTokens: 50000},
		{name: "No documents", query: "Summarize everything", documentCount: 0, availableTokens: 100000},
		{name: "Forced minimum", query: "hi there", documentCount: 2, availableTokens: 4000, forceContext: true, forceMinimum: true},
	}

	candidates := []store.Document{
		{ID: "doc_01", Title: "Q3 meeting notes", TokenCount: 4000, Content: "..."},
		{ID: "doc_02", Title: "Master services agreement", TokenCount: 12000, Content: "..."},
		{ID: "doc_03", Title: "Liability annex", TokenCount: 8000, Content: "..."},
		{ID: "doc_04", Title: "Renewal email thread", TokenCount: 1500, Content: "..."},
	}

	for i, sc := range scenarios {
		color.Yellow("\n[%d] %s — %q (docs=%d, available=%d)", i+1, sc.name, sc.query, sc.documentCount, sc.availableTokens)

		classification := cls.Classify(sc.query, nil, sc.documentCount)
		color.Green("Classification: %s (confidence %.2f)", classification.Complexity, classification.Confidence)
		prettyPrint(classification)

		strat := router.SelectStrategy(classification, sc.availableTokens, sc.documentCount, sc.forceContext)
		color.Green("Strategy: %s", strat.Type)
		prettyPrint(strat)

		if strategy.ShouldSkipRAG(strat) {
			color.Cyan("Fast path: skipping allocation")
			continue
		}

		docs := candidates
		if sc.documentCount < len(candidates) {
			docs = candidates[:sc.documentCount]
		}
		allocation := manager.Allocate(classification, docs, strat.MaxTokens, sc.forceMinimum)
		color.Green("Allocation: %d tokens, %d documents", allocation.AllocatedTokens, allocation.MaxDocuments)
		prettyPrint(allocation)
	}

	color.Cyan("\n✅ Plan check complete")
}
