package persistence

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/colonybot-go/internal/domain/shared"
)

// TickLogRepository manages tick log persistence
type TickLogRepository interface {
	// Log writes a log entry to the database with deduplication
	Log(ctx context.Context, entry TickLogEntry) error

	// GetLogs retrieves logs matching the filter, newest first
	GetLogs(ctx context.Context, filter TickLogFilter) ([]TickLogEntry, error)
}

// TickLogEntry represents a log entry
type TickLogEntry struct {
	ID        int
	RunID     string
	AgentName string
	Tick      int64
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// TickLogFilter narrows a log query. Zero values mean "any".
type TickLogFilter struct {
	RunID     string
	AgentName string
	Level     string
	Since     *time.Time
	Limit     int
	Offset    int
}

// GormTickLogRepository is a GORM-based implementation
type GormTickLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	// Deduplication cache
	dedupCache   map[string]time.Time // key: see dedupKey, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormTickLogRepository creates a new tick log repository
// If clock is nil, uses RealClock (production behavior)
func NewGormTickLogRepository(db *gorm.DB, clock shared.Clock) *GormTickLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormTickLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication. The same entry
// for the same agent is stored at most once per window, so a warning that
// repeats every tick does not flood the table.
func (r *GormTickLogRepository) Log(ctx context.Context, entry TickLogEntry) error {
	now := r.clock.Now()
	cacheKey := dedupKey(entry)

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	// Metadata is optional; an unmarshalable map is stored without it
	var metadataJSON string
	if len(entry.Metadata) > 0 {
		if jsonBytes, err := json.Marshal(entry.Metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	model := &TickLogModel{
		RunID:     entry.RunID,
		AgentName: entry.AgentName,
		Tick:      entry.Tick,
		Timestamp: now,
		Level:     entry.Level,
		Message:   entry.Message,
		Metadata:  metadataJSON,
	}

	return r.db.WithContext(ctx).Create(model).Error
}

// volatileMetadata holds fields that change on every tick and so never
// distinguish one warning from another.
var volatileMetadata = map[string]bool{
	"tick":        true,
	"agent":       true,
	"duration_ms": true,
}

// dedupKey identifies an entry for deduplication: run, agent, level, message
// and the non-volatile metadata in key order.
func dedupKey(entry TickLogEntry) string {
	var b strings.Builder
	b.WriteString(entry.RunID)
	b.WriteByte('|')
	b.WriteString(entry.AgentName)
	b.WriteByte('|')
	b.WriteString(entry.Level)
	b.WriteByte('|')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Metadata))
	for k := range entry.Metadata {
		if !volatileMetadata[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		value, err := json.Marshal(entry.Metadata[k])
		if err != nil {
			continue
		}
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(value)
	}
	return b.String()
}

// cleanupDedupCache removes entries older than the deduplication window. If
// every entry is still inside the window, the oldest ones are evicted until
// the cache is down to half its size limit.
// Must be called while holding dedupMu lock
func (r *GormTickLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
	if len(r.dedupCache) < r.dedupMaxSize {
		return
	}

	type cached struct {
		key string
		at  time.Time
	}
	byAge := make([]cached, 0, len(r.dedupCache))
	for key, at := range r.dedupCache {
		byAge = append(byAge, cached{key: key, at: at})
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].at.Before(byAge[j].at) })

	excess := len(byAge) - r.dedupMaxSize/2
	for _, c := range byAge[:excess] {
		delete(r.dedupCache, c.key)
	}
}

// GetLogs retrieves logs matching the filter, newest first
func (r *GormTickLogRepository) GetLogs(ctx context.Context, filter TickLogFilter) ([]TickLogEntry, error) {
	var models []TickLogModel

	query := r.db.WithContext(ctx).Model(&TickLogModel{})

	if filter.RunID != "" {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.AgentName != "" {
		query = query.Where("agent_name = ?", filter.AgentName)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Since != nil {
		query = query.Where("timestamp > ?", *filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(filter.Offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]TickLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = TickLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			AgentName: model.AgentName,
			Tick:      model.Tick,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
