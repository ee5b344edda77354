package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a short, readable identifier for one controller run.
// Format: {mode}-{scenario}-{8charHexUUID}, e.g. "serve-basic-a3f8e2b1".
// Persisted tick logs are grouped by this ID.
func GenerateRunID(mode, scenario string) string {
	name := sanitize(scenario)
	if name == "" {
		return mode + "-" + shortUUID()
	}
	return mode + "-" + name + "-" + shortUUID()
}

// sanitize keeps the base name of a scenario path without its extension
func sanitize(scenario string) string {
	if i := strings.LastIndexAny(scenario, `/\`); i >= 0 {
		scenario = scenario[i+1:]
	}
	if i := strings.LastIndex(scenario, "."); i > 0 {
		scenario = scenario[:i]
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(scenario), " ", "_"))
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
