package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/quizverse/duelroom/internal/duel"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Duelroom API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for multiplayer trivia duels.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/rooms
	postRoom, _ := r.NewOperationContext(http.MethodPost, "/api/rooms")
	postRoom.SetSummary("Create a room")
	postRoom.SetDescription("Creates a duel room led by the caller; returns the shareable code.")
	postRoom.AddReqStructure(CreateRoomRequest{})
	postRoom.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postRoom)

	// GET /api/rooms/{code}
	getRoom, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}")
	getRoom.SetSummary("Look up room")
	getRoom.SetDescription("Look up a room by its code before joining.")
	getRoom.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRoom)

	// POST /api/rooms/{code}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/join")
	postJoin.SetSummary("Join a room")
	postJoin.SetDescription("Join a lobby room. Re-joining with a known playerId reconnects.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// POST /api/rooms/{code}/leave
	postLeave, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/leave")
	postLeave.SetSummary("Leave a room")
	postLeave.AddReqStructure(LeaveRequest{})
	postLeave.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLeave)

	// POST /api/rooms/{code}/kick
	postKick, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/kick")
	postKick.SetSummary("Kick a player")
	postKick.SetDescription("Leader-only. Bans the target, removes them from the roster and disconnects them.")
	postKick.AddReqStructure(KickRequest{})
	postKick.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postKick.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postKick)

	// POST /api/rooms/{code}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/start")
	postStart.SetSummary("Start the game")
	postStart.SetDescription("Leader-only. Fixes the question sequence and opens the first question.")
	postStart.AddReqStructure(StartRequest{})
	postStart.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/rooms/{code}/answers
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/answers")
	postAnswer.SetSummary("Submit an answer")
	postAnswer.SetDescription("Records the caller's answer for the current question; first write wins.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(duel.AnswerResult{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/rooms/{code}/advance
	postAdvance, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/advance")
	postAdvance.SetSummary("Advance to the next question")
	postAdvance.SetDescription("Leader-only. Fails with the answered/total counts unless every player answered or force is set. Pass questionIndex to guard against duplicated confirmations.")
	postAdvance.AddReqStructure(AdvanceRequest{})
	postAdvance.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdvance.AddRespStructure(GateErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAdvance)

	// GET /api/rooms/{code}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/state")
	getState.SetSummary("Room progress snapshot")
	getState.SetDescription("Consistent snapshot of roster, current question and answered/total counts.")
	getState.AddRespStructure(duel.RoomState{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// GET /api/rooms/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of room and game events. Pass playerId as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/rooms/{code}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Same event stream as SSE, delivered over a WebSocket.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/sessions/{sessionID}/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/results")
	getResults.SetSummary("Historical results")
	getResults.SetDescription("Final ranking of a finished session, read from the durable store.")
	getResults.AddRespStructure(ResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResults)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := newOpenAPISpec()
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(spec)
	}
}
