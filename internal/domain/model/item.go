package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType declares which task payload a queue carries.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ItemType string

const (
	// ItemTypeBoefje marks queues carrying BoefjeTask payloads.
	ItemTypeBoefje ItemType = "boefje"
	// ItemTypeNormalizer marks queues carrying NormalizerTask payloads.
	ItemTypeNormalizer ItemType = "normalizer"
)

// Valid returns true if the ItemType is valid.
func (t ItemType) Valid() bool {
	return t == ItemTypeBoefje || t == ItemTypeNormalizer
}

// UnmarshalText implements encoding.TextUnmarshaler for ItemType.
func (t *ItemType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	it := ItemType(v)
	if it.Valid() {
		*t = it
		return nil
	}
	return fmt.Errorf("invalid ItemType: %q", v)
}

// PrioritizedItem is the envelope a task travels in while it sits on a
// priority queue. Data holds the serialized task payload; Hash is the
// payload's stable identity used for de-duplication.
type PrioritizedItem struct {
	ID       string          `json:"id"`
	ScoredAt time.Time       `json:"scored_at"`
	Priority int64           `json:"priority"`
	Hash     string          `json:"hash"`
	Data     json.RawMessage `json:"data"`
}

// NewPrioritizedItem wraps a task payload in a queue envelope. The caller
// supplies the payload's hash and priority; ScoredAt is stamped by the
// queue on push.
func NewPrioritizedItem(priority int64, hash string, data json.RawMessage) *PrioritizedItem {
	return &PrioritizedItem{
		ID:       uuid.NewString(),
		Priority: priority,
		Hash:     hash,
		Data:     data,
	}
}
