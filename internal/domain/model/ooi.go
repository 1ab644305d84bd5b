package model

import (
	"fmt"
	"strings"
	"time"
)

// MutationOperation is the kind of change carried by a scan profile mutation.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type MutationOperation string

const (
	// MutationOperationCreate indicates a scan profile was created.
	MutationOperationCreate MutationOperation = "create"
	// MutationOperationUpdate indicates a scan profile was updated.
	MutationOperationUpdate MutationOperation = "update"
	// MutationOperationDelete indicates a scan profile was removed.
	MutationOperationDelete MutationOperation = "delete"
)

// Valid returns true if the MutationOperation is valid.
func (o MutationOperation) Valid() bool {
	return o == MutationOperationCreate || o == MutationOperationUpdate || o == MutationOperationDelete
}

// UnmarshalText implements encoding.TextUnmarshaler for MutationOperation.
func (o *MutationOperation) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	op := MutationOperation(v)
	if op.Valid() {
		*o = op
		return nil
	}
	return fmt.Errorf("invalid MutationOperation: %q", v)
}

// ScanProfile carries the clearance level an operator granted to an object
// of interest. Level ranges from 0 (never scan) to 4 (most intrusive).
type ScanProfile struct {
	ProfileType string `json:"scan_profile_type"`
	Reference   string `json:"reference"`
	Level       int    `json:"level"`
}

// OOI is an object of interest in the asset inventory: anything a boefje can
// collect data about. An OOI without a scan profile is never scanned.
type OOI struct {
	PrimaryKey  string       `json:"primary_key"`
	ObjectType  string       `json:"object_type"`
	ScanProfile *ScanProfile `json:"scan_profile,omitempty"`
	CheckedAt   *time.Time   `json:"checked_at,omitempty"`
}

// ScanLevel returns the OOI's clearance level, or -1 when no profile is set.
func (o OOI) ScanLevel() int {
	if o.ScanProfile == nil {
		return -1
	}
	return o.ScanProfile.Level
}

// ScanProfileMutation is the broker event emitted by the inventory when a
// scan profile changes.
type ScanProfileMutation struct {
	Operation  MutationOperation `json:"operation"`
	PrimaryKey string            `json:"primary_key"`
	Value      *OOI              `json:"value,omitempty"`
}
