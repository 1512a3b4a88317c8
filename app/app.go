// Package app wires the messaging core together. The external router
// embedding the core builds an App and calls its Endpoints.
package app

import (
	"chat-core/api"
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/moderation"
	"chat-core/observability"
	"chat-core/projection"
	"chat-core/ratelimit"
	"chat-core/repositories"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"chat-core/sink"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

type App struct {
	Endpoints *api.Endpoints
	Messages  *services.MessageService
	Identity  *auth.TokenIdentity
	Metrics   *observability.Metrics

	log        *slog.Logger
	config     Config
	db         *badger.DB
	bus        *runtime.EventBus
	supervisor *workers.Supervisor
	stop       context.CancelFunc
	done       chan struct{}
}

// New opens the store and builds every component. Nothing runs until Run.
func New(config Config, log *slog.Logger) (*App, error) {
	policy, ok := domain.ToOrphanPolicy(config.OrphanPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown orphan policy %q", config.OrphanPolicy)
	}
	censoredChar, _ := utf8.DecodeRuneInString(config.ModerationCharReplacement)
	if censoredChar == utf8.RuneError {
		censoredChar = '*'
	}
	words := lo.Compact(lo.Map(strings.Split(config.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	}))
	moderator, err := moderation.NewModerator(words, censoredChar, log)
	if err != nil {
		return nil, fmt.Errorf("moderator: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	metrics := observability.NewMetrics()
	repository := repositories.NewRepository(db, log).WithMetrics(metrics)

	bus := runtime.NewEventBus(log, repository, config.EventShards, config.EventBufferSize, config.SinkTimeout).
		WithMetrics(metrics)
	bus.SubscribeTx(event.MessageEditedType, sink.NewAuditRecorder(log, repository, metrics))
	bus.Subscribe(sink.NewNotificationDispatcher(log, repository, metrics))

	messages := services.NewMessageService(log, repository, bus).
		WithModerator(moderator).
		WithOrphanPolicy(policy).
		WithMaxContentLength(config.MaxContentLength).
		WithPublishTimeout(config.PublishTimeout)
	limiter := ratelimit.NewSlidingWindow(log, config.RateLimit, config.RateWindow).WithMetrics(metrics)
	identity := auth.NewTokenIdentity(config.JWTSecret, config.JWTIssuer, config.TokenTTL)
	assembler := projection.NewAssembler(log, repository, repository).
		WithMaxDepth(config.MaxThreadDepth).
		WithBatchSize(config.ThreadBatchSize).
		WithMetrics(metrics)

	endpoints := api.NewEndpoints(log, identity, limiter, messages, assembler).
		WithAccessWindow(api.AccessWindow{StartHour: config.AccessStartHour, EndHour: config.AccessEndHour})

	supervisor := workers.NewSupervisor(log).WithRestartDelay(config.RestartInterval)
	supervisor.Add(bus.Workers()...)
	supervisor.Add(workers.NewLimiterJanitor(log, limiter, config.RateSweepInterval))
	supervisor.Add(workers.NewOutboxRelay(log, repository, bus, config.RelayInterval, config.RelayGrace).
		WithMetrics(metrics))
	supervisor.Add(workers.NewChannelCapacityWorker(log, bus.Channels(), metrics,
		config.MetricInterval, config.LowCapacityThreshold))

	return &App{
		Endpoints:  endpoints,
		Messages:   messages,
		Identity:   identity,
		Metrics:    metrics,
		log:        log,
		config:     config,
		db:         db,
		bus:        bus,
		supervisor: supervisor,
	}, nil
}

// Start launches the workers and replays the events a previous run left
// undelivered. The returned channel is closed once every worker stopped.
func (a *App) Start(ctx context.Context) (<-chan struct{}, error) {
	ctx, cancel := context.WithCancel(ctx)
	a.stop = cancel
	done := make(chan struct{})
	a.done = done
	go func() {
		a.supervisor.Run(ctx)
		close(done)
	}()
	replayed, err := a.bus.Replay(ctx)
	if err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("outbox replay: %w", err)
	}
	a.log.Info("Messaging core started", "replayed", replayed)
	return done, nil
}

// MetricsServer exposes the Prometheus registry of the app.
func (a *App) MetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.MetricsHost, a.config.MetricsPort),
		Handler: mux,
	}
}

// Close stops the workers, waits for them and closes the store.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
		<-a.done
	}
	a.log.Info("Closing BadgerDB...")
	if err := a.db.Close(); err != nil && !errors.Is(err, badger.ErrDBClosed) {
		return err
	}
	return nil
}
