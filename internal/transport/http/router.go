package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prompthub/internal/handler"
	"prompthub/internal/httputil"
	authmw "prompthub/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	PromptHandler  *handler.PromptHandler
	MediaHandler   *handler.MediaHandler
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router with all route groups.
// SessionMiddleware resolves the caller's identity for every request and
// the gatekeeper then decides per path whether an anonymous caller may
// proceed, so individual routes never repeat the auth check wiring.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(authmw.SessionMiddleware(cfg.JWTSecret))
	r.Use(authmw.Gatekeeper(authmw.DefaultPolicy(cfg.AllowedOrigins)))

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Post("/logout-all", cfg.AuthHandler.LogoutAll)
		})

		// Public browsing; handlers annotate like state when a session exists.
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", cfg.PostHandler.List)
			r.Post("/", cfg.PostHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.PostHandler.Get)
				r.Patch("/", cfg.PostHandler.Update)
				r.Delete("/", cfg.PostHandler.Delete)
				r.Post("/like", cfg.PostHandler.Like)

				r.Get("/comments", cfg.CommentHandler.List)
				r.Post("/comments", cfg.CommentHandler.Create)
				r.Get("/comments/{commentId}/replies", cfg.CommentHandler.ListReplies)
			})
		})

		// Private prompt library; the gatekeeper already requires a session.
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", cfg.PromptHandler.List)
			r.Post("/", cfg.PromptHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.PromptHandler.Get)
				r.Patch("/", cfg.PromptHandler.Update)
				r.Delete("/", cfg.PromptHandler.Delete)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", cfg.UserHandler.Me)
			r.Get("/posts", cfg.UserHandler.ListPosts)
			r.Get("/prompts", cfg.PromptHandler.List)
			r.Patch("/avatar", cfg.UserHandler.UpdateAvatar)
			r.Post("/avatar", cfg.UserHandler.UploadAvatar)
		})

		r.Post("/upload/avatar/presign", cfg.MediaHandler.PresignAvatar)
	})

	return r
}
