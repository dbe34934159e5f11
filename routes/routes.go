package routes

import (
	"github.com/clashcup/clanwar-tournament/handlers"
	"github.com/clashcup/clanwar-tournament/middleware"
	"github.com/clashcup/clanwar-tournament/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Team       *handlers.TeamHandler
	Match      *handlers.MatchHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
}

type Config struct {
	AuthService services.AuthService
	JWTSecret   string
	CORSOrigin  string
}

func Setup(h Handlers, cfg Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Password"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := middleware.AdminAuth(cfg.AuthService, cfg.JWTSecret)

	router.Get("/health", h.Tournament.Health)
	router.Post("/auth/login", h.Auth.Login)

	router.Get("/ws", h.WebSocket.ServeWs)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Get("/{teamID}", h.Team.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Post("/", h.Team.Create)
			r.Put("/{teamID}", h.Team.Update)
			r.Delete("/{teamID}", h.Team.Delete)

			r.Post("/{teamID}/members", h.Team.AddMember)
			r.Put("/{teamID}/members/{memberID}", h.Team.UpdateMember)
			r.Delete("/{teamID}/members/{memberID}", h.Team.RemoveMember)

			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{matchID}", h.Match.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Post("/", h.Match.Create)
			r.Put("/{matchID}", h.Match.Update)
			r.Delete("/{matchID}", h.Match.Delete)
		})
	})

	router.Route("/tournament", func(r chi.Router) {
		r.Get("/leaderboard", h.Tournament.Leaderboard)
		r.Get("/bracket", h.Tournament.Bracket)
		r.Get("/group/standings", h.Tournament.GroupStandings)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Post("/group", h.Tournament.CreateGroupStage)
			r.Post("/knockout/seed", h.Tournament.SeedKnockout)
			r.Post("/knockout/predesign", h.Tournament.PredesignKnockout)
			r.Post("/knockout/advance", h.Tournament.AdvanceKnockout)
			r.Post("/bracket/generate", h.Tournament.GenerateRound)
		})
	})

	return router
}
