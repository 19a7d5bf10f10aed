package selector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/pkg/embedding"
	"adaptive-rag-core/pkg/store"
	"adaptive-rag-core/pkg/token"
)

// Result describes how the candidate corpus is split between full-document
// context and the retrieval path.
type Result struct {
	LongContextDocs []store.Document `json:"long_context_docs"`
	RetrievalDocs   []store.Document `json:"retrieval_docs"`
	Strategy        string           `json:"strategy"` // "traditional" | "long_context" | "hybrid"
	TotalTokens     int              `json:"total_tokens"`
	Reason          string           `json:"reason"`
}

const (
	StrategyTraditional = "traditional"
	StrategyLongContext = "long_context"
	StrategyHybrid      = "hybrid"
)

// Config encapsulates selector parameters
type Config struct {
	TopKChunks     int // chunk similarities averaged per document
	MaxConcurrency int // parallel similarity lookups
}

// DefaultConfig returns default selector parameters
func DefaultConfig() Config {
	return Config{
		TopKChunks:     5,
		MaxConcurrency: 4,
	}
}

// Selector decides which candidate documents are loaded whole into the
// context window and which are served by chunk retrieval instead.
type Selector struct {
	provider  embedding.Provider
	chunks    embedding.ChunkIndex
	estimator *token.CachedEstimator
	logger    logger.ILogger
	cfg       Config
}

func NewSelector(
	provider embedding.Provider,
	chunks embedding.ChunkIndex,
	estimator *token.CachedEstimator,
	log logger.ILogger,
	cfg Config,
) *Selector {
	if cfg.TopKChunks <= 0 {
		cfg.TopKChunks = 5
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Selector{
		provider:  provider,
		chunks:    chunks,
		estimator: estimator,
		logger:    log,
		cfg:       cfg,
	}
}

type scoredDoc struct {
	doc        store.Document
	similarity float64
}

// SelectDocumentsForQuery splits candidates between long-context inclusion
// and retrieval. maxTokens < 0 means unlimited. Documents smaller than
// minTokens never consume long-context budget; retrieval serves them better.
//
// Similarity is only computed when it can change the outcome: with a single
// candidate, or when the whole corpus fits the budget, every document scores
// 1.0 and no embedding call is made. This short-circuit is load-bearing for
// cost control, not an optimization to be relaxed.
//
// An embedding-backend failure propagates: without a similarity ranking there
// is no safe way to choose once the corpus exceeds the budget.
func (s *Selector) SelectDocumentsForQuery(
	ctx context.Context,
	query string,
	candidates []store.Document,
	maxTokens int,
	minTokens int,
) (*Result, error) {

	usable := make([]store.Document, 0, len(candidates))
	for _, doc := range candidates {
		if !doc.HasUsableContent() {
			s.logger.Debug("SELECTOR", "Skipping candidate without content", map[string]interface{}{"doc_id": doc.ID})
			continue
		}
		if doc.TokenCount <= 0 {
			doc.TokenCount = s.estimator.EstimateDocumentTokens(doc.ID, doc.Content)
		}
		usable = append(usable, doc)
	}

	if len(usable) == 0 {
		return &Result{
			LongContextDocs: []store.Document{},
			RetrievalDocs:   []store.Document{},
			Strategy:        StrategyTraditional,
			Reason:          "no candidates with usable content",
		}, nil
	}

	corpusTokens := 0
	for _, doc := range usable {
		corpusTokens += doc.TokenCount
	}

	unlimited := maxTokens < 0

	scored := make([]scoredDoc, len(usable))
	shortCircuit := len(usable) == 1 || unlimited || corpusTokens <= maxTokens
	if shortCircuit {
		for i, doc := range usable {
			doc.Score = 1.0
			scored[i] = scoredDoc{doc: doc, similarity: 1.0}
		}
	} else {
		var err error
		scored, err = s.rankBySimilarity(ctx, query, usable)
		if err != nil {
			return nil, err
		}
	}

	selected, retrieval, usedTokens := s.pack(scored, maxTokens, minTokens, unlimited)

	strategy := StrategyHybrid
	switch {
	case len(selected) == 0:
		strategy = StrategyTraditional
	case len(selected) == len(usable):
		strategy = StrategyLongContext
	}

	reason := fmt.Sprintf("%d of %d candidates fit %d-token budget (corpus %d tokens, similarity ranking %s)",
		len(selected), len(usable), maxTokens, corpusTokens, rankingLabel(shortCircuit))

	s.logger.Debug("SELECTOR", "Document selection complete", map[string]interface{}{
		"strategy":     strategy,
		"selected":     len(selected),
		"retrieval":    len(retrieval),
		"used_tokens":  usedTokens,
		"corpus_total": corpusTokens,
	})

	return &Result{
		LongContextDocs: selected,
		RetrievalDocs:   retrieval,
		Strategy:        strategy,
		TotalTokens:     usedTokens,
		Reason:          reason,
	}, nil
}

func rankingLabel(skipped bool) string {
	if skipped {
		return "skipped"
	}
	return "computed"
}

// rankBySimilarity embeds the query once, then looks up each document's
// top-k chunk similarities concurrently. Lookup order is preserved in the
// results slice; the sort afterwards is stable so equal scores keep input
// order.
func (s *Selector) rankBySimilarity(ctx context.Context, query string, docs []store.Document) ([]scoredDoc, error) {
	if s.provider == nil || s.chunks == nil {
		return nil, fmt.Errorf("similarity ranking required but no embedding backend configured")
	}

	queryVector, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	scored := make([]scoredDoc, len(docs))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	sem := make(chan struct{}, s.cfg.MaxConcurrency)

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc store.Document) {
			defer wg.Done()
			defer func() { <-sem }()

			sims, err := s.chunks.TopKChunkSimilarities(ctx, doc.ID, queryVector, s.cfg.TopKChunks)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("chunk similarity lookup failed for %s: %w", doc.ID, err)
				}
				mu.Unlock()
				return
			}

			similarity := 0.0
			if len(sims) > 0 {
				sum := 0.0
				for _, v := range sims {
					sum += v
				}
				similarity = sum / float64(len(sims))
			}

			doc.Score = float32(similarity)
			scored[i] = scoredDoc{doc: doc, similarity: similarity}
		}(i, doc)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	return scored, nil
}

// pack walks documents in similarity order. Documents under minTokens go to
// retrieval. The first document that would overflow the budget ends the walk;
// everything after it keeps its order on the retrieval side.
func (s *Selector) pack(scored []scoredDoc, maxTokens, minTokens int, unlimited bool) (selected, retrieval []store.Document, usedTokens int) {
	selected = []store.Document{}
	retrieval = []store.Document{}

	i := 0
	for ; i < len(scored); i++ {
		doc := scored[i].doc
		if doc.TokenCount < minTokens {
			retrieval = append(retrieval, doc)
			continue
		}
		if !unlimited && usedTokens+doc.TokenCount > maxTokens {
			break
		}
		selected = append(selected, doc)
		usedTokens += doc.TokenCount
	}
	for ; i < len(scored); i++ {
		retrieval = append(retrieval, scored[i].doc)
	}

	return selected, retrieval, usedTokens
}
