package bootstrap

import (
	"log"

	"hr-assistant-be/internal/config"
	"hr-assistant-be/internal/controller"
	"hr-assistant-be/internal/pkg/logger"
	"hr-assistant-be/internal/repository/implementation"
	"hr-assistant-be/internal/repository/memory"
	"hr-assistant-be/internal/service"
	"hr-assistant-be/pkg/answer"
	"hr-assistant-be/pkg/embedding"
	"hr-assistant-be/pkg/index"
	"hr-assistant-be/pkg/intent"
	"hr-assistant-be/pkg/schedule"
	"hr-assistant-be/pkg/session"

	pktNats "hr-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	CorpusController    controller.ICorpusController
	ScheduleController  controller.IScheduleController
	AdminController     controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared facades
	Index          *index.Index
	Directory      *schedule.Directory
	SessionManager *session.Manager
	Logger         logger.ILogger
}

// NewContainer wires the whole application. db may be nil; the durable
// chunk/booking store is then disabled and everything runs in memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewTfidfProvider()
		log.Printf("[INFO] Using Embedding Provider: TFIDF (in-process)")
	}

	// 4. Core engines
	idx := index.New(embeddingProvider, index.Config{
		ChunkSize:    cfg.Assistant.ChunkSize,
		ChunkOverlap: cfg.Assistant.ChunkOverlap,
		DefaultTopK:  cfg.Assistant.TopK,
	}, sysLogger)

	router := intent.NewRouter(cfg.Assistant.IntentConfidenceFloor)
	synthesizer := answer.NewSynthesizer(cfg.Assistant.RefusalThreshold)

	engine := schedule.NewEngine(schedule.Config{
		Granularity:    cfg.Schedule.SlotGranularity,
		MaxResults:     cfg.Schedule.MaxSlotResults,
		SearchBudget:   cfg.Schedule.SearchBudget,
		PreferredStart: cfg.Schedule.PreferredStart,
		PreferredEnd:   cfg.Schedule.PreferredEnd,
	})

	directory := schedule.NewDirectory()
	if cfg.Schedule.AvailabilityFile != "" {
		seeded, err := schedule.LoadDirectory(cfg.Schedule.AvailabilityFile)
		if err != nil {
			log.Printf("[WARN] Failed to load availability file: %v", err)
		} else {
			directory = seeded
			log.Printf("[INFO] Availability directory seeded with %d participants", len(directory.IDs()))
		}
	}

	// 5. In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository(cfg.Assistant.SessionTTL)
	sessionManager := session.NewManager(sessionRepo)

	// 6. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 7. Services
	var consumerService service.IConsumerService
	var corpusPublisher service.IPublisherService
	if db != nil {
		chunkRepo := implementation.NewChunkEmbeddingRepository(db)
		consumerService = service.NewConsumerService(pubSub, cfg.Ai.ChunkTopic, chunkRepo)
		corpusPublisher = service.NewPublisherService(pubSub, cfg.Ai.ChunkTopic)
	}

	corpusService := service.NewCorpusService(idx, corpusPublisher, natsPub, sysLogger)

	assistantService := service.NewAssistantService(
		idx,
		router,
		synthesizer,
		engine,
		directory,
		sessionManager,
		cfg,
		sysLogger,
	)

	var bookingService service.IBookingService
	if db != nil {
		bookingService = service.NewBookingService(engine, directory, implementation.NewBookingRepository(db), natsPub, sysLogger)
	} else {
		bookingService = service.NewBookingService(engine, directory, nil, natsPub, sysLogger)
	}

	adminService := service.NewAdminService(sysLogger)

	// 8. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		CorpusController:    controller.NewCorpusController(corpusService),
		ScheduleController:  controller.NewScheduleController(bookingService),
		AdminController:     controller.NewAdminController(adminService),

		ConsumerService: consumerService,

		Index:          idx,
		Directory:      directory,
		SessionManager: sessionManager,
		Logger:         sysLogger,
	}
}
