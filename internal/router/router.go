package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/parisxmas/oxiforms/internal/auth"
	"github.com/parisxmas/oxiforms/internal/handler"
	mw "github.com/parisxmas/oxiforms/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Forms     *handler.FormHandler
	Responses *handler.ResponseHandler
	Search    *handler.SearchHandler
	AI        *handler.AIHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

func New(jwtSecret string, corsOrigins []string, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(corsOrigins))

	r.Get("/healthz", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		// A token is optional here; when present it fills in creator,
		// respondent and reviewer defaults.
		r.Use(auth.Optional(jwtSecret))

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		// Forms
		r.Get("/forms", h.Forms.List)
		r.Post("/forms", h.Forms.Create)
		r.Get("/forms/{id}", h.Forms.Get)
		r.Patch("/forms/{id}", h.Forms.Patch)
		r.Delete("/forms/{id}", h.Forms.Delete)
		r.Post("/forms/{id}/publish", h.Forms.Publish)
		r.Post("/forms/{id}/unpublish", h.Forms.Unpublish)

		// Responses
		r.Post("/forms/{id}/responses", h.Responses.Submit)
		r.Get("/forms/{id}/responses", h.Responses.List)
		r.Post("/forms/{id}/responses/search", h.Search.Search)
		r.Get("/responses/{id}", h.Responses.Get)
		r.Patch("/responses/{id}/status", h.Responses.PatchStatus)
		r.Post("/responses/{id}/enhance", h.Responses.Enhance)

		// AI
		r.Post("/ai/enhance", h.AI.Enhance)
		r.Post("/ai/suggest", h.AI.Suggest)
		r.Post("/ai/suggestions", h.AI.Suggest)
		r.Post("/ai/sentiment", h.AI.Sentiment)
		r.Post("/ai/prompts", h.AI.CreatePrompt)
		r.Get("/ai/prompts/{formId}/{questionId}", h.AI.GetPrompt)
		r.Patch("/ai/prompts/{formId}/{questionId}", h.AI.UpdatePrompt)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/users/{id}", h.Auth.UpsertUser)
			r.Get("/dashboard", h.Dashboard.Dashboard)
		})
	})

	return r
}
