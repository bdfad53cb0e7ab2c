package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/orchestrators/turn"
	turnmock "github.com/storyloom/trpg-api/internal/orchestrators/turn/mock"
)

func newTurnServer(t *testing.T) (*turnmock.MockService, *httptest.Server) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := turnmock.NewMockService(ctrl)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/games/{game_id}/turn", handleTurn(service))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return service, server
}

func postTurn(t *testing.T, server *httptest.Server, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/games/game-123/turn", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("X-Owner-ID", "owner-456")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandleTurn(t *testing.T) {
	service, server := newTurnServer(t)

	service.EXPECT().
		ProcessTurn(gomock.Any(), &turn.ProcessTurnInput{
			GameID:  "game-123",
			OwnerID: "owner-456",
			Message: "I enter the village.",
		}).
		Return(&turn.ProcessTurnOutput{
			TurnNumber: 3,
			Narration:  "The villagers stare.",
		}, nil)

	resp := postTurn(t, server, `{"message": "I enter the village."}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestHandleTurnBadBody(t *testing.T) {
	_, server := newTurnServer(t)

	resp := postTurn(t, server, "not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleTurnErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", errors.NotFound("game session not found"), http.StatusNotFound},
		{"version conflict", errors.Aborted("version conflict"), http.StatusConflict},
		{"generator down", errors.Unavailable("narrative generator unavailable"), http.StatusServiceUnavailable},
		{"bad message", errors.InvalidArgument("player message is required"), http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, server := newTurnServer(t)
			service.EXPECT().
				ProcessTurn(gomock.Any(), gomock.Any()).
				Return(nil, tc.err)

			resp := postTurn(t, server, `{"message": "hello"}`)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
