package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/pkratz/huntboard/go/internal/models"
)

// ScoreboardProvider computes the ranked snapshot the hub distributes.
type ScoreboardProvider interface {
	GetScoreboard(ctx context.Context, eventID uuid.UUID) (*models.Scoreboard, error)
}

// Service is the scoreboard gateway: it owns the websocket subscriber groups,
// consumes progress events, and re-pushes snapshots on a fixed interval as a
// consistency backstop against dropped pushes.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	provider          ScoreboardProvider
	repushInterval    time.Duration
	clock             clockwork.Clock
}

// Config holds configuration for the scoreboard gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
	RepushInterval   time.Duration
}

// DefaultConfig returns default configuration for the scoreboard gateway.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
		RepushInterval:   30 * time.Second,
	}
}

// NewService creates a new scoreboard gateway service.
func NewService(config Config, provider ScoreboardProvider, clock clockwork.Clock) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig)
	wsHandler := NewWebSocketHandler(connectionManager)

	s := &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
		provider:          provider,
		repushInterval:    config.RepushInterval,
		clock:             clock,
	}

	connectionManager.SetRefreshFunc(s.snapshotEvent)

	eventConsumer, err := NewEventConsumer(config.JetStreamConfig, s.PushScoreboard)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	s.eventConsumer = eventConsumer

	return s, nil
}

// Start begins the gateway service and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting scoreboard gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	go s.repushLoop(ctx)

	<-ctx.Done()

	log.Info().Msg("scoreboard gateway service shutting down")
	return s.Stop()
}

// Stop gracefully shuts down the gateway service
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
	log.Info().Msg("scoreboard gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("scoreboard gateway routes registered")
}

// PushScoreboard recomputes one event's scoreboard and broadcasts the full
// snapshot to every subscriber of that event.
func (s *Service) PushScoreboard(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.snapshotEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.connectionManager.BroadcastToEvent(eventID, event)
	return nil
}

func (s *Service) snapshotEvent(ctx context.Context, eventID uuid.UUID) (*ScoreboardEvent, error) {
	board, err := s.provider.GetScoreboard(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute scoreboard: %w", err)
	}
	return NewScoreboardSnapshotEvent(board, s.clock.Now())
}

// repushLoop re-broadcasts the scoreboard of every event with at least one
// subscriber, so a viewer that lost a push converges within one interval.
func (s *Service) repushLoop(ctx context.Context) {
	if s.repushInterval <= 0 {
		return
	}

	ticker := s.clock.NewTicker(s.repushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			for _, eventID := range s.connectionManager.ActiveEvents() {
				if err := s.PushScoreboard(ctx, eventID); err != nil {
					log.Error().
						Err(err).
						Str("event_id", eventID.String()).
						Msg("periodic repush failed")
				}
			}
		}
	}
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "scoreboard_gateway"
	stats["status"] = "running"
	return stats
}
