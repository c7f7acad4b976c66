package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-sentinel/internal/config"
	"call-sentinel/internal/domain/entities"
	repointerfaces "call-sentinel/internal/domain/interfaces/repository"
	repoconstants "call-sentinel/internal/domain/interfaces/repository/constants"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/handlers"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/provider"
	"call-sentinel/internal/infra/repository"
	"call-sentinel/internal/infra/routes"
	"call-sentinel/internal/infra/services"
	"call-sentinel/internal/middleware"
	client "call-sentinel/internal/pkg"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()
	settings := config.Load()

	ctx := context.Background()
	log := logger.NewLogger(ctx, settings.LogJSON, settings.LogLevel)

	httpClient := &http.Client{Timeout: settings.ExternalCallTimeout}

	// Layer 1: reputation store.
	reputationDB, err := client.SQLiteClient(settings.ReputationDBPath)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to open reputation database: %v", err))
	}
	defer reputationDB.Close()

	reputationRepo, err := repository.NewSQLiteReputationRepository(ctx, reputationDB)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to prepare reputation schema: %v", err))
	}
	reputationSvc := services.NewReputationService(reputationRepo, log)

	seed, err := services.LoadReputationSeed(settings.ReputationSeedFile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to load reputation seed: %v", err))
	}
	if added, err := reputationSvc.Seed(ctx, seed); err != nil {
		log.Error(fmt.Sprintf("Failed to seed reputation store: %v", err))
	} else {
		total, _ := reputationSvc.Count(ctx)
		log.Info(fmt.Sprintf("Reputation store ready: %d seeded, %d known numbers", added, total))
	}

	// Layer 2: classifier and modulator.
	var classifier Iservices.IClassifierService
	switch settings.ClassifierBackend {
	case "remote":
		classifier = services.NewRemoteClassifierService(log, settings.QueryAIHost, httpClient)
	default:
		model, err := services.LoadKeywordModel(settings.ClassifierModelFile)
		if err != nil {
			log.Fatal(fmt.Sprintf("Failed to load keyword model: %v", err))
		}
		classifier = services.NewKeywordClassifierService(model)
	}

	overrides, err := services.LoadKeywordOverrides(settings.KeywordOverrideFile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to load keyword overrides: %v", err))
	}

	modulatorCfg := services.DefaultModulatorConfig()
	modulatorCfg.Deterministic = settings.Deterministic
	modulatorCfg.NoiseMagnitude = settings.NoiseMagnitude
	modulatorCfg.FalseNegativeRate = settings.FalseNegativeRate
	modulatorCfg.FalsePositiveRate = settings.FalsePositiveRate
	modulator := services.NewConfidenceModulator(modulatorCfg, nil)

	engine := services.NewDecisionEngine(reputationSvc, classifier, modulator, overrides, log)
	engine.ShortCircuitConfidence = settings.ShortCircuitConfidence
	engine.Timeout = settings.ExternalCallTimeout

	// Knowledge store.
	var knowledgeRepo repointerfaces.Repository[entities.KnowledgeDocument]
	switch settings.KnowledgeBackend {
	case "mongo":
		mongoClient, err := client.MongoClient(settings.MongoURI)
		if err != nil {
			log.Fatal(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		}
		defer mongoClient.Disconnect(context.Background())

		mongoRepo := repository.NewMongoRepository[entities.KnowledgeDocument](mongoClient.Database(settings.MongoDatabase))
		if err := mongoRepo.EnsureIndex(ctx, repoconstants.KNOWLEDGE_COLLECTION, "category"); err != nil {
			log.Warn(fmt.Sprintf("Failed to create category index: %v", err))
		}
		knowledgeRepo = mongoRepo
	default:
		knowledgeRepo = repository.NewMemoryRepository[entities.KnowledgeDocument]()
	}

	var embedder Iservices.IEmbedder = services.NewTermFrequencyEmbedder(512)
	if settings.Embedder == "openai" {
		embedder = services.NewOpenAIEmbedder(settings.OpenAIAPIKey, settings.OpenAIBaseURL)
	}
	knowledgeSvc := services.NewKnowledgeService(knowledgeRepo, embedder, log)
	knowledgeSvc.Timeout = settings.ExternalCallTimeout

	// Per-call state.
	var store repointerfaces.KeyValue
	switch settings.StateBackend {
	case "redis":
		redisClient, err := client.RedisClient(settings.RedisAddr, settings.RedisPassword, settings.RedisDB)
		if err != nil {
			log.Fatal(fmt.Sprintf("Failed to connect to Redis: %v", err))
		}
		defer redisClient.Close()
		store = repository.NewRedisKeyValue(redisClient)
	default:
		badgerDB, err := client.BadgerClient(client.BadgerConfig{Path: settings.BadgerPath, Logger: log})
		if err != nil {
			log.Fatal(fmt.Sprintf("Failed to open state store: %v", err))
		}
		defer badgerDB.Close()
		store = repository.NewBadgerKeyValue(badgerDB)
	}
	sessionSvc := services.NewSessionService(store, settings.SessionTTL)
	purposeSvc := services.NewCallerPurposeService(store, settings.PurposeTTL)

	// Interrogation.
	var voiceAgent provider.IVoiceAgentProvider
	if settings.HandoffEnabled {
		voiceAgent = provider.NewVoiceAgentProvider(log, httpClient, settings.VoiceAgentURL, settings.VoiceAgentAPIKey)
	}

	interrogationCfg := services.DefaultInterrogationConfig()
	interrogationCfg.RejectCutoff = settings.RejectCutoff
	interrogationCfg.MaxTurns = settings.MaxTurns
	interrogationCfg.MinInformativeWords = settings.MinInformativeWords
	interrogationCfg.MinRecognitionConfidence = settings.MinRecognitionConfidence
	interrogationCfg.ReportToReputation = settings.ReportToReputation
	interrogationCfg.ForwardNumber = settings.ForwardNumber
	interrogationCfg.PurposeGrace = settings.PurposeGrace
	interrogationCfg.Timeout = settings.ExternalCallTimeout
	interrogationCfg.HandoffEnabled = settings.HandoffEnabled
	interrogationCfg.AssistantID = settings.VoiceAgentAssistant
	interrogationCfg.HandoffURL = settings.VoiceAgentCallURL

	var interrogationSvc Iservices.IInterrogationService = services.NewInterrogationService(
		engine, sessionSvc, purposeSvc, knowledgeSvc, reputationSvc, voiceAgent, log, interrogationCfg,
	)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	routes := routes.NewRoutes(
		router,
		settings.APIKey,
		handlers.NewCallHandlers(log, interrogationSvc, provider.NewTwiMLRenderer(settings.PublicBaseURL)),
		handlers.NewAgentHandlers(log, knowledgeSvc, purposeSvc),
		handlers.NewReputationHandlers(log, reputationSvc),
		handlers.NewClassifierHandlers(log, classifier),
	)

	routes.Init()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", settings.Port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", settings.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
