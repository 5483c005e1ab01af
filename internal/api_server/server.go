package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/agentbed/testbed/internal/config"
	"github.com/agentbed/testbed/internal/events"
	"github.com/agentbed/testbed/internal/generation"
	handlers "github.com/agentbed/testbed/internal/handlers/v1alpha1"
	"github.com/agentbed/testbed/internal/registry"
	"github.com/agentbed/testbed/internal/service"
	"github.com/agentbed/testbed/internal/store"
	"github.com/agentbed/testbed/internal/threadstore"
	"github.com/agentbed/testbed/internal/workflow"
	"github.com/agentbed/testbed/pkg/metrics"
	"github.com/agentbed/testbed/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	producer *events.EventProducer
}

// New returns a new instance of the testbed API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	producer *events.EventProducer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		producer: producer,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()
	metrics.RegisterWorkflowMetrics()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   strings.Split(s.cfg.Service.CorsOrigins, ","),
			AllowedMethods:   []string{"GET", "PUT", "PATCH", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	jobs := registry.NewJobRegistry()
	sessions := registry.NewSessionRegistry()
	statuses := registry.NewThreadStatusCache()

	sweeper := registry.NewSweeper(jobs, sessions,
		s.cfg.Runtime.SweepInterval, s.cfg.Runtime.JobRetention, s.cfg.Runtime.SessionRetention)
	go sweeper.Run(ctx)

	threads := threadstore.NewClient(s.cfg.Runtime.ThreadStoreURL)
	generator := generation.NewOpenAIClient(
		s.cfg.Runtime.LLMEndpoint, s.cfg.Runtime.LLMAPIKey, s.cfg.Runtime.LLMModel)

	h := handlers.NewServiceHandler(
		service.NewJobService(ctx, jobs, workflow.NewStagedRunner(jobs, s.producer), generator),
		service.NewSimulationService(ctx, s.store, sessions, statuses, threads,
			workflow.NewSimulationRunner(sessions, statuses, threads, s.producer),
			s.cfg.Runtime.DefaultMaxTurns),
		service.NewPersonaService(s.store),
		service.NewGoalService(s.store),
		service.NewOrganizationService(s.store),
	)
	h.RegisterRoutes(router)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
