package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	historyPathKey    = "history.path"
	historyRetainKey  = "history.retain"
	historyFileMode   = 0o600
	historyDirMode    = 0o700
	historyDataDir    = "fb"
	historyFileName   = "history.toml"
	tempFilePattern   = ".history-*.toml.tmp"
	defaultRetainSize = 1000
)

// Repository stores cycle history in a single TOML file. Writes replace the
// file atomically and the oldest cycles are trimmed beyond the retain limit.
type Repository struct {
	historyPath string
	retain      int
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.HistoryRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	defaultPath, err := defaultHistoryPath()
	if err != nil {
		return nil, err
	}
	cfg.SetDefault(historyPathKey, defaultPath)
	cfg.SetDefault(historyRetainKey, defaultRetainSize)

	historyPath := cfg.GetString(historyPathKey)
	if historyPath == "" {
		return nil, errors.New("history path is empty")
	}
	historyPath, err = normalizeHistoryPath(historyPath)
	if err != nil {
		return nil, err
	}

	return &Repository{
		historyPath: historyPath,
		retain:      cfg.GetInt(historyRetainKey),
		mu:          lockForPath(historyPath),
	}, nil
}

func (r *Repository) Path() string {
	return r.historyPath
}

func (r *Repository) Append(ctx context.Context, entries []domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		file.Cycles = append(file.Cycles, toSchema(entry))
	}
	if r.retain > 0 && len(file.Cycles) > r.retain {
		file.Cycles = file.Cycles[len(file.Cycles)-r.retain:]
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

// List returns the most recent limit entries, oldest first. A non-positive
// limit returns everything.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	cycles := file.Cycles
	if limit > 0 && len(cycles) > limit {
		cycles = cycles[len(cycles)-limit:]
	}

	entries := make([]domain.HistoryEntry, 0, len(cycles))
	for _, cycle := range cycles {
		entries = append(entries, fromSchema(cycle))
	}

	return entries, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.historyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read history file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode history file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func defaultHistoryPath() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, historyDataDir, historyFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", historyDataDir, historyFileName), nil
}

func normalizeHistoryPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.historyPath)
	if err := os.MkdirAll(dir, historyDirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}

	tempName := tempFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tempName, r.historyPath); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	committed = true

	return nil
}

func toSchema(entry domain.HistoryEntry) cycleSchema {
	return cycleSchema{
		ID:                   entry.CycleID,
		Timestamp:            formatTime(entry.Timestamp),
		CognitiveLoad:        entry.CognitiveLoad,
		FocusIntensitySum:    entry.FocusIntensitySum,
		ActiveCount:          entry.ActiveCount,
		AllocationEfficiency: entry.AllocationEfficiency,
	}
}

func fromSchema(cycle cycleSchema) domain.HistoryEntry {
	return domain.HistoryEntry{
		CycleID:              cycle.ID,
		Timestamp:            parseTime(cycle.Timestamp),
		CognitiveLoad:        cycle.CognitiveLoad,
		FocusIntensitySum:    cycle.FocusIntensitySum,
		ActiveCount:          cycle.ActiveCount,
		AllocationEfficiency: cycle.AllocationEfficiency,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
