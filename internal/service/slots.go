package service

import (
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/config"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// SlotTemplate is the ordered list of bookable time tokens of a day.
type SlotTemplate struct {
	tokens []string
	index  map[string]struct{}
}

// NewSlotTemplate expands cfg into tokens from Open to Close inclusive,
// every Step.
func NewSlotTemplate(cfg config.SlotConfig) (*SlotTemplate, error) {
	open, err := time.Parse(slotLayout, cfg.Open)
	if err != nil {
		return nil, fmt.Errorf("slot open %q: %w", cfg.Open, err)
	}
	closing, err := time.Parse(slotLayout, cfg.Close)
	if err != nil {
		return nil, fmt.Errorf("slot close %q: %w", cfg.Close, err)
	}
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("slot step must be positive, got %s", cfg.Step)
	}
	if closing.Before(open) {
		return nil, fmt.Errorf("slot close %s is before open %s", cfg.Close, cfg.Open)
	}
	t := &SlotTemplate{index: make(map[string]struct{})}
	for cur := open; !cur.After(closing); cur = cur.Add(cfg.Step) {
		tok := cur.Format(slotLayout)
		t.tokens = append(t.tokens, tok)
		t.index[tok] = struct{}{}
	}
	return t, nil
}

// Tokens returns a copy of the template.
func (t *SlotTemplate) Tokens() []string {
	out := make([]string, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Contains reports whether tok is a bookable slot.
func (t *SlotTemplate) Contains(tok string) bool {
	_, ok := t.index[tok]
	return ok
}

// Len is the number of slots in a day.
func (t *SlotTemplate) Len() int { return len(t.tokens) }

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, invalid(field, "date is required")
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, invalid(field, "date must be YYYY-MM-DD")
	}
	return d, nil
}
