// Package models holds the claim registry's persisted record shape.
package models

import (
	"encoding/json"
	"fmt"

	"claimd/pkg/domain"
)

// ClaimRecord is the ownership record stored per fingerprint. A fingerprint
// absent from the store means unclaimed; at most one record exists per
// fingerprint at any time.
type ClaimRecord struct {
	Owner        domain.Identity         `json:"owner"`
	RegisteredAt domain.LogicalTimestamp `json:"registered_at"`
}

// Encode renders the record in the form byte-oriented stores persist.
func (r ClaimRecord) Encode() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode claim record: %w", err)
	}
	return b, nil
}

// DecodeClaimRecord parses a record previously produced by Encode.
func DecodeClaimRecord(b []byte) (ClaimRecord, error) {
	var r ClaimRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return ClaimRecord{}, fmt.Errorf("decode claim record: %w", err)
	}
	return r, nil
}
