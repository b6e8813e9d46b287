package bootstrap

import (
	"context"
	"log"

	"github.com/yuw136/paper-helper/internal/config"
	"github.com/yuw136/paper-helper/internal/controller"
	"github.com/yuw136/paper-helper/internal/pkg/logger"
	"github.com/yuw136/paper-helper/internal/repository/memory"
	"github.com/yuw136/paper-helper/internal/repository/unitofwork"
	"github.com/yuw136/paper-helper/internal/service"
	"github.com/yuw136/paper-helper/pkg/agent"
	"github.com/yuw136/paper-helper/pkg/embedding"
	"github.com/yuw136/paper-helper/pkg/embedding/jina"
	"github.com/yuw136/paper-helper/pkg/llm/factory"
	"github.com/yuw136/paper-helper/pkg/lock"
	"github.com/yuw136/paper-helper/pkg/retrieval"
	"github.com/yuw136/paper-helper/pkg/websearch"

	pktNats "github.com/yuw136/paper-helper/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Exposed for shutdown in main.go
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	agentLogger := logger.NewIsolatedLogger(cfg.App.AgentLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	}

	// The deduce provider carries routing/grading/planning/rewriting; the
	// writing provider carries summaries and answers. Both are constructed
	// once here and injected, never reached for globally.
	deduceProvider, err := factory.NewLLMProvider(
		cfg.Ai.DeduceProvider,
		cfg.Ai.DeduceModel,
		cfg.Ai.DeduceBaseURL,
		cfg.Keys.LLM,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize deduce LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using deduce LLM Provider: %s (%s)", cfg.Ai.DeduceProvider, cfg.Ai.DeduceModel)

	writingProvider, err := factory.NewLLMProvider(
		cfg.Ai.WritingProvider,
		cfg.Ai.WritingModel,
		cfg.Ai.WritingBaseURL,
		cfg.Keys.LLM,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize writing LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using writing LLM Provider: %s (%s)", cfg.Ai.WritingProvider, cfg.Ai.WritingModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] NATS publisher unavailable, lifecycle events disabled: %v", err)
	}

	var turnLock lock.TurnLock
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis, falling back to in-process turn lock: %v", err)
			turnLock = lock.NewLocalLock(0)
		} else {
			turnLock = lock.NewRedisLock(rdb, 0)
		}
	} else {
		turnLock = lock.NewLocalLock(0)
	}

	stateRepo := memory.NewStateRepository()

	// 5. Agent graph
	retriever := retrieval.NewRetriever(embeddingProvider, uowFactory, agentLogger, retrieval.Options{
		QuestionTopK:    cfg.Agent.QuestionTopK,
		ExcerptTopK:     cfg.Agent.ExcerptTopK,
		MaxExcerptSeeds: cfg.Agent.MaxExcerptSeeds,
	})

	providers := []websearch.Provider{
		websearch.NewTavily(cfg.Keys.Tavily, ""),
		websearch.NewArxiv(),
		websearch.NewGlobalCorpus(retriever),
	}

	graph := agent.NewGraph(
		agent.NewQuestionRouter(deduceProvider, agentLogger, cfg.Agent.JudgeTimeout),
		agent.NewRelevanceGrader(deduceProvider, agentLogger, cfg.Agent.JudgeTimeout),
		agent.NewRetrievalPlanner(deduceProvider, agentLogger, cfg.Agent.JudgeTimeout, cfg.Agent.MaxExcerptSeeds),
		agent.NewQueryRewriter(deduceProvider, retriever, agentLogger, cfg.Agent.JudgeTimeout, cfg.Agent.RewriteTopK),
		agent.NewAnswerGenerator(writingProvider, agentLogger),
		agent.NewConversationCompactor(writingProvider, agentLogger, cfg.Agent.RetainWindow),
		retriever,
		providers,
		agentLogger,
		cfg.Agent.SearchTimeout,
		cfg.Agent.ExternalLimit,
	)

	// 6. Services & Controllers
	chatService := service.NewChatService(uowFactory, stateRepo, graph, turnLock, natsPub, sysLogger)
	chatController := controller.NewChatController(chatService, pubSub, sysLogger)

	return &Container{
		ChatController: chatController,
		NatsPublisher:  natsPub,
	}
}
