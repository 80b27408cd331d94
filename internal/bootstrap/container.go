package bootstrap

import (
	"context"
	"fmt"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/controller"
	"finance-dashboard/internal/handler"
	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/internal/repository/memory"
	"finance-dashboard/internal/service"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/view"
	"finance-dashboard/internal/websocket"
	"finance-dashboard/pkg/analysis"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	DashboardController controller.IDashboardController
	ApiController       controller.IApiController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	pubSub *gochannel.GoChannel
}

// NewContainer wires every dependency. The hub runs until ctx is cancelled.
func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Backend client
	backend := analysis.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	// 2. Event bus (in-process)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	publisher := service.NewPublisherService(cfg.App.StateTopic, pubSub, sysLogger)

	// 3. WebSocket Hub
	wsHub := websocket.NewHub(sysLogger)
	go wsHub.Run(ctx)

	consumer := service.NewConsumerService(pubSub, cfg.App.StateTopic, wsHub, sysLogger)

	// 4. Per-visitor stores
	visitors := memory.NewVisitorStoreRepository(
		cfg.Session.VisitorTTL,
		cfg.Session.CleanupPeriod,
		func(visitorID string) *store.Store {
			return store.New(backend, sysLogger, store.WithNotifier(publisher.Notifier(visitorID)))
		},
	)

	// 5. Views
	renderer, err := view.NewRenderer(cfg.App.RefreshSeconds)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	// 6. Services & Controllers
	uploadService := service.NewUploadService(backend, int64(cfg.App.UploadMaxBytes), sysLogger)

	return &Container{
		Logger:              sysLogger,
		DashboardController: controller.NewDashboardController(visitors, uploadService, renderer, cfg.App.UploadMaxBytes, sysLogger),
		ApiController:       controller.NewApiController(visitors, backend),
		ConsumerService:     consumer,
		LiveHandler:         handler.NewLiveHandler(wsHub, sysLogger),
		WebSocketHub:        wsHub,
		pubSub:              pubSub,
	}, nil
}

// Close stops the event bus.
func (c *Container) Close() error {
	return c.pubSub.Close()
}
