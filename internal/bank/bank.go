// Package bank normalizes heterogeneous bank callback payloads into one
// canonical event type. Each supported bank contributes a status vocabulary
// table and a field-priority table; everything downstream of this package
// works on the canonical form only.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizedStatus is the internal tri-state every raw provider status maps to.
type NormalizedStatus string

const (
	StatusSuccessful NormalizedStatus = "successful"
	StatusFailed     NormalizedStatus = "failed"
	StatusPending    NormalizedStatus = "pending"
)

var (
	// ErrUnsupportedBank is returned for a bank slug with no registry entry.
	ErrUnsupportedBank = errors.New("unsupported bank")
	// ErrMissingCorrelationKey is returned when a payload carries no
	// transaction id, UTR or order id. Accepting such a payload would create
	// an orphaned financial event, so callers must reject it outright.
	ErrMissingCorrelationKey = errors.New("no correlation key in payload")
	// ErrMissingStatus is returned when a payload has no status field.
	ErrMissingStatus = errors.New("no status field in payload")
)

// Event is the canonical internal form of a bank callback.
type Event struct {
	Bank           string
	CorrelationKey string
	UTR            string
	RawStatus      string
	Amount         int64 // In paise; 0 when the payload carries no amount
	VPA            string
	ProviderFields map[string]interface{}
}

// FieldMap lists, in priority order, the payload keys a bank uses for each
// recognized field.
type FieldMap struct {
	TransactionID []string
	UTR           []string
	OrderID       []string
	Status        []string
	Amount        []string
	VPA           []string
	Provider      []string // passthrough keys kept in Event.ProviderFields
}

// Definition describes one supported bank: its status vocabulary and the
// shape of its callback payloads.
type Definition struct {
	Slug     string
	Name     string
	Statuses map[string]NormalizedStatus
	Fields   FieldMap
}

// NormalizeStatus maps a raw provider status to the internal tri-state.
// Matching is case-insensitive. An unknown status for a known bank maps to
// pending, never to a terminal state: unexpected provider vocabulary must not
// silently drop or misclassify money-relevant events.
func (d *Definition) NormalizeStatus(raw string) NormalizedStatus {
	if s, ok := d.Statuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusPending
}

// ParsePayload extracts the canonical event from a raw JSON callback body.
// Correlation key priority: transaction id, then UTR, then provider order id.
func (d *Definition) ParsePayload(raw []byte) (*Event, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", d.Slug, err)
	}

	ev := &Event{
		Bank:           d.Slug,
		UTR:            firstString(payload, d.Fields.UTR),
		RawStatus:      firstString(payload, d.Fields.Status),
		Amount:         amountPaise(payload, d.Fields.Amount),
		VPA:            firstString(payload, d.Fields.VPA),
		ProviderFields: map[string]interface{}{},
	}

	if ev.RawStatus == "" {
		return nil, ErrMissingStatus
	}

	switch {
	case firstString(payload, d.Fields.TransactionID) != "":
		ev.CorrelationKey = firstString(payload, d.Fields.TransactionID)
	case ev.UTR != "":
		ev.CorrelationKey = ev.UTR
	case firstString(payload, d.Fields.OrderID) != "":
		ev.CorrelationKey = firstString(payload, d.Fields.OrderID)
	default:
		return nil, ErrMissingCorrelationKey
	}

	for _, key := range d.Fields.Provider {
		if v, ok := payload[key]; ok {
			ev.ProviderFields[key] = v
		}
	}

	return ev, nil
}

// Registry holds the supported bank definitions keyed by slug.
type Registry struct {
	banks map[string]*Definition
}

// NewRegistry builds a registry from the given definitions.
func NewRegistry(defs ...*Definition) *Registry {
	banks := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		banks[d.Slug] = d
	}
	return &Registry{banks: banks}
}

// Get returns the definition for a bank slug.
func (r *Registry) Get(slug string) (*Definition, error) {
	d, ok := r.banks[strings.ToLower(slug)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBank, slug)
	}
	return d, nil
}

// Slugs returns the registered bank slugs.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.banks))
	for slug := range r.banks {
		slugs = append(slugs, slug)
	}
	return slugs
}

// firstString returns the first non-empty value among the prioritized keys.
// Numeric identifiers are formatted back to their string form.
func firstString(payload map[string]interface{}, keys []string) string {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			if val == math.Trunc(val) {
				return strconv.FormatInt(int64(val), 10)
			}
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return ""
}

// amountPaise reads a rupee amount (number or numeric string) and converts it
// to paise. Returns 0 when no amount field is present or parseable.
func amountPaise(payload map[string]interface{}, keys []string) int64 {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return int64(math.Round(val * 100))
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err == nil {
				return int64(math.Round(f * 100))
			}
		}
	}
	return 0
}
