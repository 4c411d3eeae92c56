package bootstrap

import (
	"context"
	"log"
	"time"

	"deepseek-chat-be/internal/config"
	"deepseek-chat-be/internal/controller"
	"deepseek-chat-be/internal/handler"
	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/repository/memory"
	"deepseek-chat-be/internal/repository/unitofwork"
	"deepseek-chat-be/internal/service"
	"deepseek-chat-be/internal/websocket"
	"deepseek-chat-be/pkg/llm/factory"
	pktNats "deepseek-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConversationController controller.IConversationController
	WebhookController      controller.IWebhookController
	StatusController       controller.IStatusController

	// Background Services (Exposed for main.go to run)
	ConsumerService   service.IConsumerService
	LiveUpdateService *service.LiveUpdateService

	// WebSockets
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	pubSub     *gochannel.GoChannel
	eventTopic string
	closers    []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger, eventTopic: cfg.Events.Topic}

	verifier, err := serverutils.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTPublicKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize token verifier: %v", err)
	}

	// 2. Event Bus
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { c.pubSub.Close() })

	// 3. Completion Gateway
	gw := factory.NewGateway(cfg.Ai)
	if !gw.Configured() {
		sysLogger.Error("Bootstrap", "No completion backend configured: set DEEPSEEK_API_KEY and/or PYTHON_API_URL", nil)
	}

	// 4. Infrastructure
	// NATS
	// Events only go through NATS when we can also read them back.
	var relay service.EventRelay
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}
	if natsPub != nil && natsSub != nil {
		relay = natsPub
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelPing()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, cfg.Events.RevealInterval, wsLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Events.Topic, c.pubSub)
	c.ConsumerService = service.NewConsumerService(c.pubSub, cfg.Events.Topic, relay, c.WebSocketHub, sysLogger)
	if relay != nil {
		c.LiveUpdateService = service.NewLiveUpdateService(natsSub, c.WebSocketHub, wsLogger)
	}

	conversationService := service.NewConversationService(uowFactory, gw, publisherService, sysLogger)

	var webhookVerifier service.PayloadVerifier
	if cfg.Auth.WebhookSecret != "" {
		webhookVerifier, err = service.NewSvixVerifier(cfg.Auth.WebhookSecret)
		if err != nil {
			log.Printf("[WARN] Invalid SVIX_SECRET, identity webhook disabled: %v", err)
		}
	}
	webhookService := service.NewWebhookService(uowFactory, webhookVerifier, sysLogger)

	statusService := service.NewStatusService(service.StatusTarget{
		Primary:      gw.Primary(),
		PrimaryModel: cfg.Ai.DeepSeekModel,
		Secondary:    gw.Secondary(),
		SecondaryURL: cfg.Ai.PythonAPIURL,
	}, memory.NewStatusRepository(cfg.App.StatusCacheTTL))

	// 6. Controllers
	limiter := serverutils.NewRateLimiter(cfg.RateLimit.CompletionPerMinute, cfg.RateLimit.CompletionBurst)
	c.ConversationController = controller.NewConversationController(conversationService, verifier, limiter, gw.Configured())
	c.WebhookController = controller.NewWebhookController(webhookService)
	c.StatusController = controller.NewStatusController(statusService)
	c.LiveHandler = handler.NewLiveHandler(c.WebSocketHub, verifier, wsLogger)

	return c
}

// Start launches the hub and event workers; they stop when ctx ends.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	if c.LiveUpdateService != nil {
		if err := c.LiveUpdateService.Start(ctx); err != nil {
			c.Logger.Warn("Bootstrap", "Live updates fall back to local delivery", map[string]interface{}{"error": err.Error()})
			c.ConsumerService = service.NewConsumerService(c.pubSub, c.eventTopic, nil, c.WebSocketHub, c.Logger)
		}
	}

	if err := c.ConsumerService.Consume(ctx); err != nil {
		c.Logger.Error("Bootstrap", "Consumer service failed to start", map[string]interface{}{"error": err})
	}
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
