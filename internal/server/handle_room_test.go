package server

import (
	"net/http"
	"testing"

	"github.com/quizverse/duelroom/internal/duel"
)

func TestHandleCreateRoom(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("creates a lobby room", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms", CreateRoomRequest{
			Name: "friday duel", Universe: "movies", TimerSeconds: 15,
			PlayerID: "leader", Pseudo: "Alice",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		state := decode[duel.RoomState](t, rec)
		if len(state.Code) != 6 {
			t.Errorf("code = %q, want 6 characters", state.Code)
		}
		if state.Status != duel.StatusLobby {
			t.Errorf("status = %q, want lobby", state.Status)
		}
		if state.LeaderID != "leader" {
			t.Errorf("leaderId = %q, want leader", state.LeaderID)
		}
	})

	t.Run("rejects missing pseudo", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms", CreateRoomRequest{
			TimerSeconds: 10, PlayerID: "leader",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects non-positive timer", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms", CreateRoomRequest{
			PlayerID: "leader", Pseudo: "Alice",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleJoin(t *testing.T) {
	r, _ := newTestRouter(t)
	state := createTwoPlayerRoom(t, r)

	t.Run("unknown room", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms/ZZZZZZ/join", JoinRequest{
			PlayerID: "p3", Pseudo: "Carol",
		})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("roster keeps insertion order", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/join", JoinRequest{
			PlayerID: "p3", Pseudo: "Carol",
		})
		got := decode[duel.RoomState](t, rec)
		if len(got.Players) != 3 {
			t.Fatalf("players = %d, want 3", len(got.Players))
		}
		if got.Players[0].Pseudo != "Alice" || got.Players[2].Pseudo != "Carol" {
			t.Errorf("unexpected roster order: %+v", got.Players)
		}
	})

	t.Run("lookup returns the room", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/rooms/"+state.Code, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		got := decode[duel.RoomState](t, rec)
		if got.Code != state.Code {
			t.Errorf("code = %q, want %q", got.Code, state.Code)
		}
	})
}

func TestHandleKick(t *testing.T) {
	r, _ := newTestRouter(t)
	state := createTwoPlayerRoom(t, r)

	t.Run("non-leader is rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/kick", KickRequest{
			PlayerID: "p2", TargetID: "leader",
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("leader kicks and target cannot rejoin", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/kick", KickRequest{
			PlayerID: "leader", TargetID: "p2",
		})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		rec = doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/join", JoinRequest{
			PlayerID: "p2", Pseudo: "Bob",
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("rejoin status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}

func TestHandleLeave(t *testing.T) {
	r, _ := newTestRouter(t)
	state := createTwoPlayerRoom(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/rooms/"+state.Code+"/leave", LeaveRequest{
		PlayerID: "p2",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/rooms/"+state.Code, nil)
	got := decode[duel.RoomState](t, rec)
	if len(got.Players) != 1 {
		t.Errorf("players = %d, want 1", len(got.Players))
	}
}
