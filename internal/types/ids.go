package types

import (
	"errors"

	"github.com/google/uuid"
)

// NewRuleID generates a UUIDv7 rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewDrugID generates a UUIDv7 drug identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewDrugID() DrugID {
	return DrugID(uuid.Must(uuid.NewV7()).String())
}

// ParseDrugID validates and converts a string to DrugID.
// Rejects malformed UUIDs so lookups never hit the store with garbage keys.
func ParseDrugID(s string) (DrugID, error) {
	if s == "" {
		return "", errors.New("drug id is empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return DrugID(s), nil
}
