package threadstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/threads", r.URL.Path)

		var body struct {
			Metadata ThreadMetadata `json:"metadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sim-1", body.Metadata["simulation_id"])

		_ = json.NewEncoder(w).Encode(map[string]string{"thread_id": "thread-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	id, err := client.CreateThread(context.Background(), ThreadMetadata{"simulation_id": "sim-1"})
	require.NoError(t, err)
	assert.Equal(t, "thread-1", id)
}

func TestCreateThreadWithoutIDIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateThread(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads/thread-1/history", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Checkpoint{
			{CheckpointID: "c1", Values: CheckpointState{Messages: []RawMessage{
				{Type: "human", Content: "hello"},
				{Type: "ai", Content: "hi", AdditionalKwargs: map[string]any{"reward": 1.5, "stop": true}},
			}}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	checkpoints, err := client.GetHistory(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, checkpoints, 1)

	messages := checkpoints[0].Values.Messages
	require.Len(t, messages, 2)
	reward, ok := messages[1].Reward()
	assert.True(t, ok)
	assert.Equal(t, 1.5, reward)
	assert.True(t, messages[1].Stop())
	assert.False(t, messages[0].Stop())
}

func TestNotFoundMapsToErrThreadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetHistory(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestServerErrorMapsToErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Step(context.Background(), "thread-1", StepParams{Turn: 1, MaxTurns: 5})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads/thread-1/runs/wait", r.URL.Path)

		var params StepParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, 3, params.Turn)
		assert.Equal(t, "Dana", params.PersonaName)

		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []RawMessage{
			{Type: "ai", Content: "answer"},
		}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	messages, err := client.Step(context.Background(), "thread-1", StepParams{
		PersonaName: "Dana", Turn: 3, MaxTurns: 5,
	})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "answer", messages[0].Content)
}

func TestConnectionRefusedIsUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.GetMetadata(context.Background(), "thread-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
