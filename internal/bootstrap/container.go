package bootstrap

import (
	"log"
	"time"

	"adaptive-rag-core/internal/config"
	"adaptive-rag-core/internal/controller"
	"adaptive-rag-core/internal/pkg/logger"
	"adaptive-rag-core/internal/repository/implementation"
	"adaptive-rag-core/internal/service"
	"adaptive-rag-core/pkg/citation"
	"adaptive-rag-core/pkg/embedding"
	"adaptive-rag-core/pkg/rag"
	"adaptive-rag-core/pkg/rag/budget"
	"adaptive-rag-core/pkg/rag/classifier"
	"adaptive-rag-core/pkg/rag/selector"
	"adaptive-rag-core/pkg/rag/strategy"
	"adaptive-rag-core/pkg/token"

	pktNats "adaptive-rag-core/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PlannerController  controller.IPlannerController
	CitationController controller.ICitationController

	// Exposed for main.go shutdown
	Publisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	plannerLogger := logger.NewIsolatedLogger(cfg.App.PlannerLogFilePath)

	// 2. Infrastructure
	// NATS is best-effort: without a broker the engine still plans, it just
	// doesn't announce decisions.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// Embedding Provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		log.Printf("[INFO] No embedding provider configured; similarity ranking disabled")
	}

	// Chunk index over pgvector
	var chunkIndex embedding.ChunkIndex
	if db != nil {
		chunkRepo := implementation.NewChunkEmbeddingRepository(db)
		chunkIndex = implementation.NewChunkIndexAdapter(chunkRepo)
	}

	// Token estimation with a shared in-process cache
	estimator := token.NewCachedEstimator(token.NewHeuristicEstimator(), 30*time.Minute)

	// 3. Planning pipeline
	cls := classifier.New(classifier.Config{
		SimpleMaxLength:   cfg.Planner.SimpleMaxLength,
		ModerateMaxLength: cfg.Planner.ModerateMaxLength,
	})
	budgetManager := budget.NewManager()
	router := strategy.NewRouter(strategy.Config{
		LiteContextMaxTokens: cfg.Planner.LiteContextMaxTokens,
		EnableFastPath:       cfg.Planner.EnableFastPath,
	})

	// Without an embedding backend, selection still works for corpora that
	// fit the budget; the similarity short-circuit never touches it.
	docSelector := selector.NewSelector(embeddingProvider, chunkIndex, estimator, plannerLogger, selector.Config{
		TopKChunks: cfg.Planner.TopKChunks,
	})

	planner := rag.NewPlanner(cls, budgetManager, router, docSelector, plannerLogger)

	// 4. Citation pipeline
	citationParser := citation.NewParser(sysLogger)
	xmlParser := citation.NewXMLParser(sysLogger)

	// 5. Services
	plannerService := service.NewPlannerService(planner, cls, natsPub, sysLogger, cfg.Planner.MinLongContextTokens)
	citationService := service.NewCitationService(citationParser, xmlParser, sysLogger)

	// 6. Controllers
	return &Container{
		PlannerController:  controller.NewPlannerController(plannerService),
		CitationController: controller.NewCitationController(citationService, sysLogger),
		Publisher:          natsPub,
	}
}
