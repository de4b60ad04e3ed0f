package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-dash/internal/common/api"
	"go-dash/internal/config"
	"go-dash/internal/database"
	"go-dash/internal/engine"
	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/backend/bear"
	"go-dash/internal/engine/backend/tiger"
	"go-dash/internal/features/automation"
	"go-dash/internal/features/dashboard"
	"go-dash/internal/features/export"
	"go-dash/internal/features/notification"
	"go-dash/internal/features/realtime"
	"go-dash/internal/features/system"
	"go-dash/internal/logger"
	"go-dash/internal/middleware"
	"go-dash/pkg/utils"

	_ "go-dash/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// NewBackendService picks the analytical backend by configured flavor. The
// Postgres pool is dialed only when the tiger flavor asks for it.
func NewBackendService(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (backend.Service, error) {
	switch cfg.BackendFlavor {
	case "tiger":
		pg, err := database.NewPostgresDatabase(lc, cfg)
		if err != nil {
			return nil, err
		}
		return tiger.NewBackend(pg), nil
	case "bear":
		return bear.NewBackend(mongodb), nil
	default:
		return nil, fmt.Errorf("unknown backend flavor %q", cfg.BackendFlavor)
	}
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// @title           Dashboard Engine API
// @version         1.0
// @description     Session-scoped dashboard command engine with pluggable analytical backends.

// @contact.name    API Support

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Analytical backend and session engines
			NewBackendService,
			engine.NewRegistry,

			// Initialize Repository
			automation.NewAutomationRepository,
			notification.NewChannelRepository,

			// Initialize Service
			dashboard.NewDashboardService,
			export.NewExportService,
			automation.NewScriptExecutor,
			automation.NewAutomationService,
			notification.NewNotificationService,

			// Initialize Controller
			dashboard.NewDashboardController,
			export.NewExportController,
			automation.NewAutomationController,
			notification.NewNotificationController,
			realtime.NewEventStreamController,

			// Initialize API Routes
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(export.NewExportApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(realtime.NewEventStreamApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, automationService automation.AutomationService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return automationService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return automationService.StopScheduler()
					},
				})
			},
			func(lc fx.Lifecycle, registry *engine.Registry) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						registry.CloseAll()
						return nil
					},
				})
			},
		),
	)

	app.Run()
}
