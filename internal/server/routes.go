package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Duelroom API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(deps.Logger, deps.DB))

	r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", handleCreateRoom(deps.Registry))
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", handleRoomLookup(deps.Registry))
			r.Get("/state", handleRoomState(deps.Registry))
			r.Post("/join", handleJoin(deps.Registry))
			r.Post("/leave", handleLeave(deps.Registry))
			r.Post("/kick", handleKick(deps.Registry))

			r.Post("/start", handleStart(deps.Coordinator))
			r.Post("/answers", handleAnswer(deps.Coordinator))
			r.Post("/advance", handleAdvance(deps.Coordinator))
			r.Post("/cancel", handleCancel(deps.Coordinator))

			r.Get("/events", handleEvents(deps.Registry, deps.Bus, deps.Poller))
			r.Get("/ws", handleWS(deps.Logger, deps.Registry, deps.Bus, deps.Poller))
		})
	})

	r.Get("/api/sessions/{sessionID}/results", handleResults(deps.Store))
}
