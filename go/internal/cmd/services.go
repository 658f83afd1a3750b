package main

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/pkratz/huntboard/go/internal/catalog"
	"github.com/pkratz/huntboard/go/internal/gateway"
	"github.com/pkratz/huntboard/go/internal/outbox"
	"github.com/pkratz/huntboard/go/internal/progress"
	"github.com/pkratz/huntboard/go/internal/scoreboard"
)

// Services holds the wired application components.
type Services struct {
	Progress         *progress.App
	ProgressHandler  *progress.Handler
	Scoreboard       *scoreboard.App
	ScoreboardHandle *scoreboard.Handler
	Gateway          *gateway.Service
	OutboxWorker     *outbox.Worker
	OutboxPublisher  *outbox.JetStreamPublisher
}

func setupServices(db *sql.DB, config *Config) (*Services, error) {
	clock := clockwork.NewRealClock()

	catalogRepo := catalog.NewRepository(db)
	progressRepo := progress.NewRepository(db)
	outboxRepo := outbox.NewRepository(db)

	progressApp := progress.NewApp(progressRepo, catalogRepo, outboxRepo, clock)

	scoreboardRepo := scoreboard.NewRepository(db)
	scoreboardApp := scoreboard.NewApp(scoreboardRepo, clock)

	jsConfig := outbox.DefaultJetStreamConfig()
	jsConfig.URL = config.Nats.URL
	publisher, err := outbox.NewJetStreamPublisher(jsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox publisher: %w", err)
	}
	worker := outbox.NewWorker(outboxRepo, publisher, config.outboxPollInterval(), config.Outbox.BatchSize)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = config.Nats.URL
	gatewayConfig.RepushInterval = config.repushInterval()
	gatewayService, err := gateway.NewService(gatewayConfig, scoreboardApp, clock)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create scoreboard gateway: %w", err)
	}

	return &Services{
		Progress:         progressApp,
		ProgressHandler:  progress.NewHandler(progressApp),
		Scoreboard:       scoreboardApp,
		ScoreboardHandle: scoreboard.NewHandler(scoreboardApp),
		Gateway:          gatewayService,
		OutboxWorker:     worker,
		OutboxPublisher:  publisher,
	}, nil
}
