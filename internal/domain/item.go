package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// itemNamespace seeds the deterministic keys of items submitted without an ID.
var itemNamespace = uuid.MustParse("6f1c9a52-3d0e-5b7a-9c44-2e8d1f0b7a31")

type WorkItem struct {
	ID       string         `json:"id,omitempty"`
	Content  string         `json:"content"`
	Keywords []string       `json:"keywords,omitempty"`
	Domain   string         `json:"domain,omitempty"`
	Deadline time.Time      `json:"deadline"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Key returns the identity used to merge resubmissions of the same logical item.
func (w WorkItem) Key() string {
	if id := strings.TrimSpace(w.ID); id != "" {
		return id
	}

	keywords := make([]string, 0, len(w.Keywords))
	for _, keyword := range w.Keywords {
		keywords = append(keywords, strings.ToLower(strings.TrimSpace(keyword)))
	}
	sort.Strings(keywords)

	seed := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(w.Domain)),
		strings.TrimSpace(w.Content),
		strings.Join(keywords, ","),
	}, "\x00")

	return uuid.NewSHA1(itemNamespace, []byte(seed)).String()
}

func (w WorkItem) HasDeadline() bool {
	return !w.Deadline.IsZero()
}

func (w WorkItem) Validate() error {
	if strings.TrimSpace(w.Content) == "" && len(w.Keywords) == 0 && strings.TrimSpace(w.Domain) == "" && len(w.Payload) == 0 {
		return fmt.Errorf("%w: item has no content, keywords, domain or payload", ErrInvalidInput)
	}
	if w.HasDeadline() && w.Deadline.Unix() < 0 {
		return fmt.Errorf("%w: deadline %s is before the epoch", ErrInvalidInput, w.Deadline.Format(time.RFC3339))
	}
	for key, value := range w.Payload {
		if err := validatePayloadValue(key, value); err != nil {
			return err
		}
	}

	return nil
}

func validatePayloadValue(path string, value any) error {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		time.Time:
		return nil
	case float32:
		return validatePayloadFloat(path, float64(v))
	case float64:
		return validatePayloadFloat(path, v)
	case map[string]any:
		for key, nested := range v {
			if err := validatePayloadValue(path+"."+key, nested); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, nested := range v {
			if err := validatePayloadValue(fmt.Sprintf("%s[%d]", path, i), nested); err != nil {
				return err
			}
		}
		return nil
	case []string:
		return nil
	default:
		return fmt.Errorf("%w: payload field %q has unsupported type %T", ErrInvalidInput, path, value)
	}
}

func validatePayloadFloat(path string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: payload field %q is not a finite number", ErrInvalidInput, path)
	}
	return nil
}

// CycleContext carries the caller goals and domains a batch is scored against.
type CycleContext struct {
	Goals         []string
	ActiveDomains []string
}

func (c CycleContext) IsEmpty() bool {
	return len(c.Goals) == 0 && len(c.ActiveDomains) == 0
}

// ValidateBatch checks every item and rejects duplicate keys within one batch.
func ValidateBatch(items []WorkItem) error {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		key := item.Key()
		if first, ok := seen[key]; ok {
			return fmt.Errorf("item %d: %w: duplicate of item %d (key %s)", i, ErrInvalidInput, first, key)
		}
		seen[key] = i
	}

	return nil
}
