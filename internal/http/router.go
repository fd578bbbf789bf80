package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/auth"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/http/handlers"
	"github.com/hannakang/schedhub/internal/http/middlewares"
	"github.com/hannakang/schedhub/internal/observability"
	"github.com/hannakang/schedhub/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter wires the full HTTP surface. weather may be any WeatherSource so
// tests can plug a stub.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, weather handlers.WeatherSource, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("schedhub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// metrics

	prom := observability.NewProm(prometheus.DefaultRegisterer)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	schedulesRepo := postgres.NewSchedulesRepo(pool, prom)
	commentsRepo := postgres.NewCommentsRepo(pool, prom)
	assignmentsRepo := postgres.NewAssignmentsRepo(pool, prom)

	// auth plumbing
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	schedulesHandler := handlers.NewSchedulesHandler(schedulesRepo, usersRepo, weather, log)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo, usersRepo)
	assignmentsHandler := handlers.NewAssignmentsHandler(assignmentsRepo)
	weatherHandler := handlers.NewWeatherHandler(weather)

	// public auth endpoints, rate limited by IP
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow())
	limited := authLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/signup", limited, authHandler.SignUp)
	r.POST("/login", limited, authHandler.Login)

	// everything else requires a valid token
	protected := r.Group("/", authMw.RequireAuth())

	protected.GET("/users", usersHandler.ListUsers)
	protected.GET("/users/:id", usersHandler.GetUserByID)
	protected.PUT("/users/:id", usersHandler.UpdateUser)
	protected.DELETE("/users/:id", usersHandler.DeleteUser)

	protected.POST("/schedules", schedulesHandler.CreateSchedule)
	protected.GET("/schedules", schedulesHandler.ListSchedules)
	protected.GET("/schedules/:id", schedulesHandler.GetScheduleByID)
	protected.PUT("/schedules/:id", schedulesHandler.UpdateSchedule)
	protected.DELETE("/schedules/:id", schedulesHandler.DeleteSchedule)

	protected.POST("/schedules/:id/comments", commentsHandler.CreateComment)
	protected.GET("/schedules/:id/comments", commentsHandler.ListComments)
	protected.PUT("/comments/:id", commentsHandler.UpdateComment)
	protected.DELETE("/comments/:id", commentsHandler.DeleteComment)

	protected.GET("/weather", weatherHandler.GetToday)

	// manager management is admin-only
	admin := protected.Group("/", authMw.RequireRole(user.RoleAdmin))

	admin.POST("/managers", assignmentsHandler.AddManager)
	admin.DELETE("/managers", assignmentsHandler.RemoveManager)
	admin.GET("/schedules/:id/managers", assignmentsHandler.ListManagers)

	return r
}
