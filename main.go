package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/tech-arch1tect/berth-api/config"
	"github.com/tech-arch1tect/berth-api/internal/auth"
	"github.com/tech-arch1tect/berth-api/internal/database"
	"github.com/tech-arch1tect/berth-api/internal/health"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"
	"github.com/tech-arch1tect/berth-api/internal/requestlog"
	"github.com/tech-arch1tect/berth-api/internal/sink/cloudwatch"
	"github.com/tech-arch1tect/berth-api/internal/sink/objectstore"
	"github.com/tech-arch1tect/berth-api/internal/ssl"
	"github.com/tech-arch1tect/berth-api/internal/user"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		config.Module,
		logging.Module,
		logmanager.Module,
		objectstore.Module,
		cloudwatch.Module,
		database.Module,
		user.Module,
		auth.Module,
		health.Module,
		fx.Provide(NewMetricsRegistry),
		fx.Provide(NewEcho),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartServer),
	).Run()
}

func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewEcho(manager *logmanager.Manager, logger *logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = requestlog.ErrorHandler(manager, logger.With(zap.String("service", "http")))
	e.Use(echomiddleware.Recover())
	e.Use(requestlog.Middleware(manager))
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	reg *prometheus.Registry,
	tokens *auth.TokenService,
	logger *logging.Logger,
	healthHandler *health.Handler,
	userHandler *user.Handler,
	authHandler *auth.Handler,
	logHandler *logmanager.Handler,
) {
	authLogger := logger.With(zap.String("service", "auth"))
	requireAccess := auth.TokenMiddleware(tokens.ParseAccess, authLogger)
	requireRefresh := auth.TokenMiddleware(tokens.ParseRefresh, authLogger)
	requireAdmin := auth.RequireRole(user.RoleAdmin)

	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	users := e.Group("/user")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.POST("/login", authHandler.Login)
	users.GET("/refresh", authHandler.Refresh, requireRefresh)
	users.GET("/profile", authHandler.Profile, requireAccess)
	users.GET("/admin", authHandler.Admin, requireAccess, requireAdmin)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	logs := e.Group("/logs", requireAccess, requireAdmin)
	logs.POST("/export", logHandler.ExportDay)
	logs.GET("/archive", logHandler.GetArchive)
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: e,
			}

			if cfg.IsProduction() {
				tlsConfig, err := ssl.NewCertificateManager(cfg.SSLDir, logger).TLSConfig()
				if err != nil {
					return err
				}
				server.TLSConfig = tlsConfig
			}

			go func() {
				logger.Info("server listening",
					zap.String("addr", server.Addr),
					zap.Bool("tls", server.TLSConfig != nil),
				)
				if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
