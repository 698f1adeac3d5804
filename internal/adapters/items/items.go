// Package items reads work-item batches from TOML, YAML or JSON files.
package items

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Batch is one file's worth of work items plus the optional cycle context.
type Batch struct {
	Items   []domain.WorkItem
	Context domain.CycleContext
}

type fileSchema struct {
	Context contextSchema `toml:"context" yaml:"context" json:"context"`
	Items   []itemSchema  `toml:"items" yaml:"items" json:"items"`
}

type contextSchema struct {
	Goals   []string `toml:"goals" yaml:"goals" json:"goals"`
	Domains []string `toml:"domains" yaml:"domains" json:"domains"`
}

type itemSchema struct {
	ID       string         `toml:"id" yaml:"id" json:"id"`
	Content  string         `toml:"content" yaml:"content" json:"content"`
	Keywords []string       `toml:"keywords" yaml:"keywords" json:"keywords"`
	Domain   string         `toml:"domain" yaml:"domain" json:"domain"`
	Deadline any            `toml:"deadline" yaml:"deadline" json:"deadline"`
	DueIn    string         `toml:"due_in" yaml:"due_in" json:"due_in"`
	Payload  map[string]any `toml:"payload" yaml:"payload" json:"payload"`
}

// Load decodes the file at path. Relative due_in values resolve against now.
func Load(path string, now time.Time) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read items file: %w", err)
	}

	batch, err := Decode(data, filepath.Ext(path), now)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", path, err)
	}

	return batch, nil
}

// Decode parses data in the format named by ext (".toml", ".yaml", ".yml" or ".json").
func Decode(data []byte, ext string, now time.Time) (Batch, error) {
	var file fileSchema

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return Batch{}, fmt.Errorf("%w: decode toml: %v", domain.ErrInvalidInput, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Batch{}, fmt.Errorf("%w: decode yaml: %v", domain.ErrInvalidInput, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return Batch{}, fmt.Errorf("%w: decode json: %v", domain.ErrInvalidInput, err)
		}
	default:
		return Batch{}, fmt.Errorf("%w: unsupported items file extension %q", domain.ErrInvalidInput, ext)
	}

	batch := Batch{
		Items: make([]domain.WorkItem, 0, len(file.Items)),
		Context: domain.CycleContext{
			Goals:         file.Context.Goals,
			ActiveDomains: file.Context.Domains,
		},
	}
	for i, raw := range file.Items {
		item, err := raw.toDomain(now)
		if err != nil {
			return Batch{}, fmt.Errorf("item %d: %w", i, err)
		}
		batch.Items = append(batch.Items, item)
	}

	return batch, nil
}

func (s itemSchema) toDomain(now time.Time) (domain.WorkItem, error) {
	item := domain.WorkItem{
		ID:       s.ID,
		Content:  s.Content,
		Keywords: s.Keywords,
		Domain:   s.Domain,
		Payload:  localTimes(s.Payload, now.Location()),
	}

	deadline, err := parseDeadline(s.Deadline, now.Location())
	if err != nil {
		return domain.WorkItem{}, err
	}
	if s.DueIn != "" {
		if !deadline.IsZero() {
			return domain.WorkItem{}, fmt.Errorf("%w: deadline and due_in are mutually exclusive", domain.ErrInvalidInput)
		}
		d, err := time.ParseDuration(s.DueIn)
		if err != nil {
			return domain.WorkItem{}, fmt.Errorf("%w: due_in: %v", domain.ErrInvalidInput, err)
		}
		deadline = now.Add(d)
	}
	item.Deadline = deadline

	return item, nil
}

func parseDeadline(raw any, zone *time.Location) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case toml.LocalDate:
		return v.AsTime(zone), nil
	case toml.LocalDateTime:
		return v.AsTime(zone), nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: deadline: %v", domain.ErrInvalidInput, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("%w: deadline must be an RFC3339 timestamp, got %T", domain.ErrInvalidInput, raw)
	}
}

// localTimes replaces TOML local dates and times in a payload with values the
// domain accepts. Dates and date-times are placed in zone; bare times become strings.
func localTimes(payload map[string]any, zone *time.Location) map[string]any {
	if payload == nil {
		return nil
	}

	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = localTimeValue(value, zone)
	}
	return out
}

func localTimeValue(value any, zone *time.Location) any {
	switch v := value.(type) {
	case toml.LocalDate:
		return v.AsTime(zone)
	case toml.LocalDateTime:
		return v.AsTime(zone)
	case toml.LocalTime:
		return v.String()
	case map[string]any:
		return localTimes(v, zone)
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = localTimeValue(nested, zone)
		}
		return out
	default:
		return value
	}
}
