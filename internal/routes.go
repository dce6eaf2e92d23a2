package internal

import (
	"io/fs"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"devconnector/internal/auth"
	"devconnector/internal/config"
	"devconnector/internal/github"
	"devconnector/internal/http"
	"devconnector/internal/http/middleware"
)

// apiCORSConfig lets the client call the API from its dev server and send the token header.
var apiCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.TokenHeader,
}

// RouteDeps are the services the routes are wired to.
type RouteDeps struct {
	Config *config.Config
	Tokens *auth.TokenService
	GitHub *github.Client
	// ClientFS is the client build served for unmatched GET routes. Only used in production.
	ClientFS fs.FS
}

// RouteMounter returns the cartridge route mount function for deps.
func RouteMounter(deps RouteDeps) func(*cartridge.Server) {
	return func(srv *cartridge.Server) {
		MountAppRoutes(srv, deps)
	}
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server, deps RouteDeps) {
	cfg := deps.Config
	logger := srv.GetLogger()
	h := http.NewHandlers(deps.Tokens, deps.GitHub)

	// Rate limiting would interfere with tests, so it only runs in production
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// 10 requests per minute per IP on login and registration against brute force
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// ============================================
	// ROUTE CONFIGURATIONS
	// The API is token based and called cross-origin by the client, so
	// Sec-Fetch-Site checks are off and CORS answers for every route.
	// ============================================

	publicConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	credentialsConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{authRateLimiter},
	}

	privateConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{middleware.RequireToken(deps.Tokens, logger)},
	}

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === USERS & AUTH ===
	srv.Post("/api/users", h.RegisterAction, credentialsConfig)
	srv.Get("/api/auth", h.CurrentUserAction, privateConfig)
	srv.Post("/api/auth", h.LoginAction, credentialsConfig)

	// === PROFILES ===
	srv.Get("/api/profile", h.ProfilesIndexAction, publicConfig)
	srv.Post("/api/profile", h.ProfileUpsertAction, privateConfig)
	srv.Delete("/api/profile", h.ProfileDeleteAction, privateConfig)
	srv.Get("/api/profile/me", h.ProfileMeAction, privateConfig)
	srv.Get("/api/profile/user/:user_id", h.ProfileByUserAction, publicConfig)
	srv.Get("/api/profile/github/:username", h.GitHubReposAction, publicConfig)

	srv.Put("/api/profile/experience", h.ExperienceCreateAction, privateConfig)
	srv.Delete("/api/profile/experience/:exp_id", h.ExperienceDeleteAction, privateConfig)
	srv.Put("/api/profile/education", h.EducationCreateAction, privateConfig)
	srv.Delete("/api/profile/education/:edu_id", h.EducationDeleteAction, privateConfig)

	// === POSTS ===
	srv.Post("/api/posts", h.PostCreateAction, privateConfig)
	srv.Get("/api/posts", h.PostsIndexAction, privateConfig)
	srv.Get("/api/posts/:id", h.PostShowAction, privateConfig)
	srv.Delete("/api/posts/:id", h.PostDeleteAction, privateConfig)
	srv.Put("/api/posts/like/:id", h.PostLikeAction, privateConfig)
	srv.Put("/api/posts/unlike/:id", h.PostUnlikeAction, privateConfig)
	srv.Post("/api/posts/comment/:id", h.CommentCreateAction, privateConfig)
	srv.Delete("/api/posts/comment/:id/:comment_id", h.CommentDeleteAction, privateConfig)

	// Preflight for every API path
	srv.Options("/api/*", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicConfig)

	// === CLIENT ===
	// Registered last so it only sees requests no API route matched
	if cfg.IsProduction() && deps.ClientFS != nil {
		srv.App().Use(http.ClientFallback(deps.ClientFS))
	}
}
