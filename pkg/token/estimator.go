package token

import (
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
)

// Estimator converts text into an approximate model-token count.
type Estimator interface {
	EstimateTokens(text string) int
}

// HeuristicEstimator approximates token counts without a tokenizer:
// CJK text runs close to one token per character, Latin text close to
// one token per four characters. Ideally, use a tokenizer-aware estimator.
type HeuristicEstimator struct{}

func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{}
}

func (e *HeuristicEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	cjk := 0
	other := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}

	tokens := cjk + (other+3)/4
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// CachedEstimator wraps an Estimator with a per-document cache so repeated
// planning passes over the same corpus do not re-count unchanged content.
// Entries are keyed by document ID, which must be stable per content version.
type CachedEstimator struct {
	inner Estimator
	cache *gocache.Cache
}

func NewCachedEstimator(inner Estimator, ttl time.Duration) *CachedEstimator {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedEstimator{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (e *CachedEstimator) EstimateTokens(text string) int {
	return e.inner.EstimateTokens(text)
}

// EstimateDocumentTokens resolves a token count for a document, cache-or-compute.
func (e *CachedEstimator) EstimateDocumentTokens(docID, content string) int {
	if docID != "" {
		if cached, found := e.cache.Get(docID); found {
			if tokens, ok := cached.(int); ok {
				return tokens
			}
		}
	}

	tokens := e.inner.EstimateTokens(content)

	if docID != "" {
		e.cache.Set(docID, tokens, gocache.DefaultExpiration)
	}
	return tokens
}
