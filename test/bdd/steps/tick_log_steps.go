package steps

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cucumber/godog"

	ticklog "github.com/andrescamacho/colonybot-go/internal/adapters/logging"
	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonybot-go/test/helpers"
)

// tickLogContext holds state for tick log persistence scenarios
type tickLogContext struct {
	clock   *shared.MockClock
	repo    *persistence.GormTickLogRepository
	logger  *ticklog.TickLogger
	runID   string
	entries []persistence.TickLogEntry
}

func (c *tickLogContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	c.clock = shared.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	c.repo = persistence.NewGormTickLogRepository(helpers.SharedTestDB, c.clock)
	c.logger = nil
	c.runID = ""
	c.entries = nil
	return nil
}

func (c *tickLogContext) aTickLoggerPersistingRunAtLevel(runID, level string) error {
	c.runID = runID
	c.logger = ticklog.NewWithWriter(io.Discard, config.LoggingConfig{
		Level:  level,
		Format: "text",
		Output: "stderr",
	}, ticklog.WithRepository(c.repo, runID))
	return nil
}

func (c *tickLogContext) theCurrentTickIs(tick int64) error {
	c.logger.SetTick(tick)
	return nil
}

func (c *tickLogContext) agentLogsTimes(agentName, level, message string, times int) error {
	for i := 0; i < times; i++ {
		c.logger.Log(level, message, map[string]interface{}{"agent": agentName})
	}
	return nil
}

func (c *tickLogContext) secondsPass(seconds int) error {
	c.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (c *tickLogContext) iQueryTheLogsOfAgent(agentName string) error {
	entries, err := c.repo.GetLogs(context.Background(), persistence.TickLogFilter{
		RunID:     c.runID,
		AgentName: agentName,
	})
	if err != nil {
		return err
	}
	c.entries = entries
	return nil
}

func (c *tickLogContext) entriesAreReturned(n int) error {
	if len(c.entries) != n {
		return fmt.Errorf("expected %d entries, got %d", n, len(c.entries))
	}
	return nil
}

func (c *tickLogContext) theNewestEntryIsAtTick(level string, tick int64) error {
	if len(c.entries) == 0 {
		return fmt.Errorf("no entries returned")
	}
	newest := c.entries[0]
	if newest.Level != level || newest.Tick != tick {
		return fmt.Errorf("expected %s at tick %d, got %s at tick %d", level, tick, newest.Level, newest.Tick)
	}
	return nil
}

// InitializeTickLogScenario registers the tick log persistence steps
func InitializeTickLogScenario(sc *godog.ScenarioContext) {
	c := &tickLogContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, c.reset()
	})

	sc.Step(`^a tick logger persisting run "([^"]*)" at level "([^"]*)"$`, c.aTickLoggerPersistingRunAtLevel)
	sc.Step(`^the current tick is (\d+)$`, c.theCurrentTickIs)
	sc.Step(`^agent "([^"]*)" logs (DEBUG|INFO|WARNING|ERROR) "([^"]*)" (\d+) times?$`, c.agentLogsTimes)
	sc.Step(`^(\d+) seconds pass$`, c.secondsPass)
	sc.Step(`^I query the logs of agent "([^"]*)"$`, c.iQueryTheLogsOfAgent)
	sc.Step(`^(\d+) entr(?:y is|ies are) returned$`, c.entriesAreReturned)
	sc.Step(`^the newest entry is (DEBUG|INFO|WARNING|ERROR) at tick (\d+)$`, c.theNewestEntryIsAtTick)
}
