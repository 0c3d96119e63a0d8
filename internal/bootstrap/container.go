package bootstrap

import (
	"log"

	"ai-lecture-be/internal/config"
	"ai-lecture-be/internal/controller"
	"ai-lecture-be/internal/pkg/logger"
	"ai-lecture-be/internal/repository/implementation"
	"ai-lecture-be/internal/repository/memory"
	"ai-lecture-be/internal/service"
	"ai-lecture-be/pkg/agent"
	"ai-lecture-be/pkg/lecture/notify"
	"ai-lecture-be/pkg/llm/factory"

	pktNats "ai-lecture-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	LectureController  controller.ILectureController
	DispatchController controller.IDispatchController

	// Background Services (Exposed for main.go to run)
	ArchiveConsumerService service.IArchiveConsumerService
}

// NewContainer wires the whole dependency graph. db may be nil: the
// service then runs purely in-memory with the archive surface disabled.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	lectureAgent := agent.NewLLMAgent(llmProvider)

	// In-Memory Session Registry
	registry := memory.NewSessionRegistry()

	// NATS (optional: lifecycle events are skipped when unavailable)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	notifier := notify.NewNatsNotifier(natsPub, sysLogger)

	// 3. Services
	var (
		publisherService       service.IPublisherService
		archiveConsumerService service.IArchiveConsumerService
		archiveService         service.IArchiveService
	)
	if db != nil {
		archiveRepo := implementation.NewArchiveRepository(db)
		publisherService = service.NewPublisherService(pubSub)
		archiveConsumerService = service.NewArchiveConsumerService(pubSub, archiveRepo)
		archiveService = service.NewArchiveService(archiveRepo)
	} else {
		log.Printf("[WARN] No database configured, lecture archive is disabled")
		archiveService = service.NewArchiveService(nil)
	}

	lectureService := service.NewLectureService(
		registry,
		lectureAgent,
		lectureAgent,
		lectureAgent,
		notifier,
		publisherService,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		LectureController:  controller.NewLectureController(lectureService, archiveService),
		DispatchController: controller.NewDispatchController(lectureService),

		ArchiveConsumerService: archiveConsumerService,
	}
}
