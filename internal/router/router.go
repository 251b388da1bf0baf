package router

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/handlers"
	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/config"
	"github.com/anonto42/gamematch/backend/pkg/logger"
	"github.com/anonto42/gamematch/backend/pkg/pubsub"
	"github.com/anonto42/gamematch/backend/pkg/storage"
	"github.com/anonto42/gamematch/backend/validators"
)

// Options carries the dependencies of the HTTP server.
type Options struct {
	Store      *repositories.Store
	Verifier   middleware.Verifier
	Notifier   services.Notifier
	Inbox      repositories.NotificationRepository
	Subscriber pubsub.Subscriber // nil disables the realtime stream
	Storage    storage.Storage
	Feed       services.FeedConfig

	// StaticURL and StaticDir serve locally stored uploads when both are set.
	StaticURL string
	StaticDir string

	Development bool
}

// New builds the echo server with every route registered.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(opts.Development)

	config.SetupMiddleware(e)
	SetupRoutes(e, opts)
	return e
}

// SetupRoutes wires services and handlers under /api.
func SetupRoutes(e *echo.Echo, opts Options) {
	identity := services.NewIdentityService(opts.Store)
	graph := services.NewSocialGraphService(opts.Store, opts.Notifier)
	engagement := services.NewEngagementService(opts.Store, opts.Notifier)
	posts := services.NewPostService(opts.Store)
	feed := services.NewFeedService(opts.Store, opts.Feed)
	profiles := services.NewProfileService(identity, opts.Storage)
	notifications := services.NewNotificationService(opts.Inbox)

	auth := middleware.NewAuth(opts.Verifier, identity)

	e.GET("/health", handlers.HealthCheck)
	if opts.StaticURL != "" && opts.StaticDir != "" {
		e.Static(opts.StaticURL, opts.StaticDir)
	}

	api := e.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	handlers.NewPostHandler(posts, feed).RegisterPostRoutes(api, auth)
	handlers.NewLikeHandler(engagement, feed).RegisterLikeRoutes(api, auth)
	handlers.NewFollowHandler(graph).RegisterFollowRoutes(api, auth)
	handlers.NewSearchHandler(feed).RegisterSearchRoutes(api, auth)
	handlers.NewUserHandler(identity, profiles, feed).RegisterUserRoutes(api, auth)
	handlers.NewNotificationHandler(notifications, opts.Subscriber).RegisterNotificationRoutes(api, auth)

	l := logger.L()
	l.Info().Int("routes", len(e.Routes())).Msg("routes configured")
}
