package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftapp/callrelay/internal/adapters/signal"
	"github.com/driftapp/callrelay/internal/app"
	"github.com/driftapp/callrelay/internal/config"
	"github.com/driftapp/callrelay/internal/core"
	"github.com/driftapp/callrelay/internal/domain"
)

type denyGate struct{}

func (denyGate) Authorize(context.Context, domain.UserID, domain.RoomID) bool { return false }

type noopLink struct{}

func (noopLink) TrySend(core.Frame) error { return nil }
func (noopLink) Close()                   {}

func newTestRouter(t *testing.T) (*httptest.Server, *app.Registry) {
	t.Helper()
	reg := app.NewRegistry(nil)
	ctrl := signal.NewController(reg, denyGate{}, nil, nil, signal.Options{})
	r := SetupRouter(&config.Config{Mode: "release"}, reg, ctrl)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, reg
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode
}

func TestStatusEndpoint(t *testing.T) {
	srv, reg := newTestRouter(t)

	var status statusResponse
	if code := getJSON(t, srv.URL+"/status", &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if status.Status != "ok" || status.ActiveRooms != 0 {
		t.Fatalf("status = %+v", status)
	}

	reg.Join("r1", "alice", noopLink{})
	getJSON(t, srv.URL+"/status", &status)
	if status.ActiveRooms != 1 {
		t.Fatalf("activeRooms = %d, want 1", status.ActiveRooms)
	}
}

func TestRoomLookupEndpoint(t *testing.T) {
	srv, reg := newTestRouter(t)
	reg.Join("r1", "alice", noopLink{})
	reg.Join("r1", "bob", noopLink{})

	var room roomResponse
	getJSON(t, srv.URL+"/rooms?roomId=r1", &room)
	if !room.Exists || room.ParticipantCount != 2 || room.RoomID != "r1" {
		t.Fatalf("room = %+v", room)
	}

	getJSON(t, srv.URL+"/rooms?roomId=ghost", &room)
	if room.Exists || room.ParticipantCount != 0 {
		t.Fatalf("ghost room = %+v", room)
	}

	var errResp map[string]any
	if code := getJSON(t, srv.URL+"/rooms", &errResp); code != http.StatusBadRequest {
		t.Fatalf("missing roomId code = %d, want 400", code)
	}
}
