package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/agentbed/testbed/api/v1alpha1"
	"github.com/agentbed/testbed/internal/config"
	"github.com/agentbed/testbed/internal/generation"
	v1alpha1 "github.com/agentbed/testbed/internal/handlers/v1alpha1"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/service"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/threadstore"
	"github.com/agentbed/testbed/internal/workflow"
)

type stubGenerator struct {
	result map[string]any
	err    error
}

func (g *stubGenerator) Generate(context.Context, generation.Request) (map[string]any, error) {
	return g.result, g.err
}

type stubThreadStore struct {
	history []threadstore.Checkpoint
}

func (f *stubThreadStore) CreateThread(context.Context, threadstore.ThreadMetadata) (string, error) {
	return "thread-" + uuid.NewString(), nil
}

func (f *stubThreadStore) GetHistory(context.Context, string) ([]threadstore.Checkpoint, error) {
	return f.history, nil
}

func (f *stubThreadStore) GetMetadata(context.Context, string) (threadstore.ThreadMetadata, error) {
	return nil, nil
}

func (f *stubThreadStore) Step(context.Context, string, threadstore.StepParams) ([]threadstore.RawMessage, error) {
	// keep runs alive so tests observe the running state
	time.Sleep(10 * time.Millisecond)
	return []threadstore.RawMessage{
		{Type: "human", Content: "hello"},
		{Type: "ai", Content: "hi"},
	}, nil
}

type fixture struct {
	router  chi.Router
	store   store.Store
	gen     *stubGenerator
	threads *stubThreadStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.InitDB(config.NewDefault())
	require.NoError(t, err)
	datastore := store.NewStore(db)
	require.NoError(t, datastore.InitialMigration(context.Background()))
	t.Cleanup(func() { _ = datastore.Close() })

	gen := &stubGenerator{result: map[string]any{"name": "Dana"}}
	threads := &stubThreadStore{}
	jobs := registry.NewJobRegistry()
	sessions := registry.NewSessionRegistry()
	statuses := registry.NewThreadStatusCache()

	handler := v1alpha1.NewServiceHandler(
		service.NewJobService(context.Background(), jobs, workflow.NewStagedRunner(jobs, nil), gen),
		service.NewSimulationService(context.Background(), datastore, sessions, statuses, threads,
			workflow.NewSimulationRunner(sessions, statuses, threads, nil), 10),
		service.NewPersonaService(datastore),
		service.NewGoalService(datastore),
		service.NewOrganizationService(datastore),
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return &fixture{router: router, store: datastore, gen: gen, threads: threads}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJobPollingContract(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/generation/jobs", api.CreateJobRequest{
		Kind: "persona", Requirements: "a skeptical buyer",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	reply := decodeBody[api.CreateJobReply](t, rec)
	require.NotEmpty(t, reply.JobID)

	deadline := time.Now().Add(2 * time.Second)
	var job api.Job
	for {
		rec = f.do(t, http.MethodGet, "/api/v1/generation/jobs/"+reply.JobID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		job = decodeBody[api.Job](t, rec)
		if job.Status.IsTerminal() || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, api.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, map[string]any{"name": "Dana"}, job.Result)
}

func TestJobValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/generation/jobs", api.CreateJobRequest{Kind: "persona"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/generation/jobs", api.CreateJobRequest{Kind: "recipe", Requirements: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/generation/jobs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody[api.Error](t, rec)
	assert.Contains(t, body.Message, "not found")
}

func TestSimulationLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	personaID, goalID := seedPersonaAndGoal(t, f)

	rec := f.do(t, http.MethodPost, "/api/v1/simulations", api.CreateSimulationRequest{
		PersonaID: personaID,
		GoalID:    goalID,
		MaxTurns:  3,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	reply := decodeBody[api.CreateSimulationReply](t, rec)
	require.NotEmpty(t, reply.SimulationID)
	require.NotEmpty(t, reply.ThreadID)

	rec = f.do(t, http.MethodGet, "/api/v1/simulations/"+reply.SimulationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[api.SimulationStatus](t, rec)
	assert.Equal(t, reply.SimulationID, status.SimulationID)
	assert.Equal(t, 3, status.MaxTurns)

	rec = f.do(t, http.MethodPost, "/api/v1/simulations/"+reply.SimulationID+"/stop", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/simulations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]api.SessionSummary](t, rec)
	assert.Len(t, list, 1)
}

func TestSimulationRejectsUnknownPersona(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/simulations", api.CreateSimulationRequest{
		PersonaID: uuid.NewString(),
		GoalID:    uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThreadStatusDefaultsToUnknown(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/threads/no-such-thread/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[api.ThreadStatus](t, rec)
	assert.Equal(t, "unknown", status.Status)
}

func TestPersonaCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/personas", api.PersonaCreate{
		Name: "Dana", Background: "procurement lead", Tags: []string{"b2b"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.Persona](t, rec)

	rec = f.do(t, http.MethodGet, "/api/v1/personas/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	name := "Dana II"
	rec = f.do(t, http.MethodPatch, "/api/v1/personas/"+created.ID, api.PersonaUpdate{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[api.Persona](t, rec)
	assert.Equal(t, "Dana II", updated.Name)

	rec = f.do(t, http.MethodDelete, "/api/v1/personas/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/personas/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrganizationDuplicateName(t *testing.T) {
	f := newFixture(t)

	form := api.OrganizationCreate{Name: "acme", Description: "widgets"}
	rec := f.do(t, http.MethodPost, "/api/v1/organizations", form)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/organizations", form)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func seedPersonaAndGoal(t *testing.T, f *fixture) (personaID, goalID string) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/personas", api.PersonaCreate{
		Name: "seed-persona-" + uuid.NewString(), Background: "bg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	persona := decodeBody[api.Persona](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/goals", api.GoalCreate{
		Name: "seed-goal-" + uuid.NewString(), Objective: "obj", SuccessCriteria: "crit", InitialPrompt: "hi",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decodeBody[api.Goal](t, rec)

	return persona.ID, goal.ID
}
