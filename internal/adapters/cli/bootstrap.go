package cli

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	ticklog "github.com/andrescamacho/colonybot-go/internal/adapters/logging"
	"github.com/andrescamacho/colonybot-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/adapters/sim"
	"github.com/andrescamacho/colonybot-go/internal/application/behavior"
	"github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/application/mediator"
	"github.com/andrescamacho/colonybot-go/internal/application/tick"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/database"
	"github.com/andrescamacho/colonybot-go/pkg/utils"
)

// app holds everything a tick-running command needs
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	memory   *persistence.GormAgentMemoryRepository
	logger   *ticklog.TickLogger
	world    *sim.World
	mediator mediator.Mediator
	runID    string
}

// bootstrap wires database, logging, metrics, the simulated world and the
// mediator handlers. mode prefixes the run ID ("run" or "serve").
func bootstrap(ctx context.Context, cfg *config.Config, mode string) (*app, error) {
	if cfg.Simulation.Scenario == "" {
		return nil, errors.New("no scenario configured: set simulation.scenario or pass --scenario")
	}

	scenario, err := sim.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		db:     db,
		memory: persistence.NewGormAgentMemoryRepository(db, nil),
		runID:  utils.GenerateRunID(mode, cfg.Simulation.Scenario),
	}

	var opts []ticklog.Option
	if cfg.Logging.Persist {
		opts = append(opts, ticklog.WithRepository(persistence.NewGormTickLogRepository(db, nil), a.runID))
	}
	a.logger, err = ticklog.New(cfg.Logging, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.world, err = sim.NewWorld(scenario)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build world: %w", err)
	}

	seeded, err := scenario.SeedMemory(ctx, a.memory)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed agent memory: %w", err)
	}

	a.mediator = mediator.NewMediator()
	if cfg.Metrics.Enabled {
		commands, err := metrics.Setup()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mediator.RegisterMiddleware(metrics.PrometheusMiddleware(commands))
	}

	controller := behavior.NewController(a.world, a.world, a.memory)
	if err := mediator.RegisterHandler[*behavior.ProcessAgentCommand](a.mediator, behavior.NewProcessAgentHandler(controller)); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register ProcessAgent handler: %w", err)
	}

	runner := tick.NewRunner(a.mediator, a.world, a.world, shared.NewRealClock(), cfg.Simulation.TickBudget)
	if err := mediator.RegisterHandler[*tick.RunTickCommand](a.mediator, runner); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register RunTick handler: %w", err)
	}

	a.logger.Log(logging.LevelInfo, "Colony bootstrapped", map[string]interface{}{
		"run_id":   a.runID,
		"scenario": scenario.Name,
		"agents":   len(scenario.Agents),
		"seeded":   seeded,
		"database": cfg.Database.Type,
	})

	return a, nil
}

// Context returns ctx carrying the app logger
func (a *app) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// Close releases the logger, metrics registry and database
func (a *app) Close() {
	if a.logger != nil {
		a.logger.Close()
	}
	if a.cfg.Metrics.Enabled {
		metrics.Teardown()
	}
	if a.db != nil {
		database.Close(a.db)
	}
}
