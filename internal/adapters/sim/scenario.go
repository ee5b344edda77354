package sim

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/colonybot-go/internal/domain/agent"
	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// Scenario is the YAML description of a simulated world
type Scenario struct {
	Name string `yaml:"name" validate:"required"`

	// Energy moved per successful harvest, build and upgrade call
	HarvestPower int `yaml:"harvest_power" validate:"min=0"`
	BuildPower   int `yaml:"build_power" validate:"min=0"`
	UpgradePower int `yaml:"upgrade_power" validate:"min=0"`

	// Energy every source regains per tick, up to its capacity
	SourceRegen int `yaml:"source_regen" validate:"min=0"`

	Rooms  []RoomSpec  `yaml:"rooms" validate:"required,min=1,dive"`
	Agents []AgentSpec `yaml:"agents" validate:"dive"`
}

type RoomSpec struct {
	Name       string          `yaml:"name" validate:"required"`
	Sources    []SourceSpec    `yaml:"sources" validate:"dive"`
	Structures []StructureSpec `yaml:"structures" validate:"dive"`
	Sites      []SiteSpec      `yaml:"sites" validate:"dive"`
	Controller *ControllerSpec `yaml:"controller,omitempty"`
}

type SourceSpec struct {
	ID       string `yaml:"id" validate:"required"`
	X        int    `yaml:"x" validate:"min=0,max=49"`
	Y        int    `yaml:"y" validate:"min=0,max=49"`
	Energy   int    `yaml:"energy" validate:"min=0,ltefield=Capacity"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
}

type StructureSpec struct {
	ID       string `yaml:"id" validate:"required"`
	Kind     string `yaml:"kind" validate:"required,oneof=spawn extension container tower storage road wall"`
	X        int    `yaml:"x" validate:"min=0,max=49"`
	Y        int    `yaml:"y" validate:"min=0,max=49"`
	Capacity int    `yaml:"capacity" validate:"min=0"`
	Energy   int    `yaml:"energy" validate:"min=0,ltefield=Capacity"`
	// Locked structures refuse incoming transfers
	Locked bool `yaml:"locked"`
}

type SiteSpec struct {
	ID       string `yaml:"id" validate:"required"`
	Kind     string `yaml:"kind" validate:"required,oneof=spawn extension container tower storage road wall"`
	X        int    `yaml:"x" validate:"min=0,max=49"`
	Y        int    `yaml:"y" validate:"min=0,max=49"`
	Progress int    `yaml:"progress" validate:"min=0,ltfield=Total"`
	Total    int    `yaml:"total" validate:"min=1"`
}

type ControllerSpec struct {
	ID       string `yaml:"id" validate:"required"`
	X        int    `yaml:"x" validate:"min=0,max=49"`
	Y        int    `yaml:"y" validate:"min=0,max=49"`
	Level    int    `yaml:"level" validate:"min=0"`
	Progress int    `yaml:"progress" validate:"min=0"`
	Total    int    `yaml:"total" validate:"min=1"`
}

type AgentSpec struct {
	Name     string `yaml:"name" validate:"required"`
	Room     string `yaml:"room" validate:"required"`
	X        int    `yaml:"x" validate:"min=0,max=49"`
	Y        int    `yaml:"y" validate:"min=0,max=49"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
	Energy   int    `yaml:"energy" validate:"min=0,ltefield=Capacity"`

	// Initial memory, written only when the agent has none
	Task      string `yaml:"task,omitempty"`
	Gathering *bool  `yaml:"gathering,omitempty"`
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML
func ParseScenario(data []byte) (*Scenario, error) {
	s := &Scenario{
		HarvestPower: 2,
		BuildPower:   5,
		UpgradePower: 1,
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks field constraints and cross references
func (s *Scenario) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	rooms := make(map[string]bool, len(s.Rooms))
	ids := make(map[string]bool)
	for _, r := range s.Rooms {
		if rooms[r.Name] {
			return fmt.Errorf("invalid scenario: duplicate room %q", r.Name)
		}
		rooms[r.Name] = true

		var roomIDs []string
		for _, src := range r.Sources {
			roomIDs = append(roomIDs, src.ID)
		}
		for _, st := range r.Structures {
			roomIDs = append(roomIDs, st.ID)
		}
		for _, site := range r.Sites {
			roomIDs = append(roomIDs, site.ID)
		}
		if r.Controller != nil {
			roomIDs = append(roomIDs, r.Controller.ID)
		}
		for _, id := range roomIDs {
			if ids[id] {
				return fmt.Errorf("invalid scenario: duplicate object id %q", id)
			}
			ids[id] = true
		}
	}

	names := make(map[string]bool, len(s.Agents))
	for _, a := range s.Agents {
		if names[a.Name] {
			return fmt.Errorf("invalid scenario: duplicate agent %q", a.Name)
		}
		names[a.Name] = true
		if !rooms[a.Room] {
			return fmt.Errorf("invalid scenario: agent %q is in unknown room %q", a.Name, a.Room)
		}
		if a.Task != "" {
			if _, err := agent.ParseTask(a.Task); err != nil {
				return fmt.Errorf("invalid scenario: agent %q: %w", a.Name, err)
			}
		}
	}

	return nil
}

// SeedMemory writes the initial task and gathering flag of every agent that
// declares one and has no value stored yet. Stored values are never replaced,
// including undecodable ones.
func (s *Scenario) SeedMemory(ctx context.Context, memory agent.Memory) (int, error) {
	written := 0
	for _, a := range s.Agents {
		if a.Task != "" {
			_, found, err := memory.Int(ctx, a.Name, agent.FieldActivity)
			if err := ignoreDecodeError(err); err != nil {
				return written, fmt.Errorf("failed to read task of %s: %w", a.Name, err)
			}
			if !found {
				task, _ := agent.ParseTask(a.Task)
				if err := memory.SetInt(ctx, a.Name, agent.FieldActivity, task.Code()); err != nil {
					return written, fmt.Errorf("failed to seed task of %s: %w", a.Name, err)
				}
				written++
			}
		}

		if a.Gathering != nil {
			_, found, err := memory.Bool(ctx, a.Name, agent.FieldGathering)
			if err := ignoreDecodeError(err); err != nil {
				return written, fmt.Errorf("failed to read gathering flag of %s: %w", a.Name, err)
			}
			if !found {
				if err := memory.SetBool(ctx, a.Name, agent.FieldGathering, *a.Gathering); err != nil {
					return written, fmt.Errorf("failed to seed gathering flag of %s: %w", a.Name, err)
				}
				written++
			}
		}
	}
	return written, nil
}

func ignoreDecodeError(err error) error {
	var decodeErr *shared.MemoryDecodeError
	if errors.As(err, &decodeErr) {
		return nil
	}
	return err
}
