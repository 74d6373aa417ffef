package models

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SnapshotVersion is stamped on uploads that do not carry a version.
const SnapshotVersion = "2.0"

// Snapshot is the full serialized workspace exchanged with the sync server.
// All four collections must be present; an empty array is valid, a missing
// one is not.
type Snapshot struct {
	Users           []User           `json:"users" binding:"required"`
	Assets          []Asset          `json:"assets" binding:"required"`
	Currencies      []Currency       `json:"currencies" binding:"required"`
	Paths           []InvestmentPath `json:"paths" binding:"required"`
	ActiveUserID    string           `json:"activeUserId"`
	Version         string           `json:"version"`
	ServerTimestamp int64            `json:"serverTimestamp,omitempty"`
}

// SnapshotError reports the first snapshot field that failed validation.
type SnapshotError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot field %q %s", e.Field, e.Reason)
}

var (
	snapshotValidate     *validator.Validate
	snapshotValidateOnce sync.Once
)

func getSnapshotValidator() *validator.Validate {
	snapshotValidateOnce.Do(func() {
		snapshotValidate = validator.New(validator.WithRequiredStructEnabled())
		snapshotValidate.SetTagName("binding")
	})
	return snapshotValidate
}

// Validate checks the snapshot shape and returns a *SnapshotError naming the
// offending field.
func (s *Snapshot) Validate() error {
	if s == nil {
		return &SnapshotError{Field: "data", Reason: "is required"}
	}
	err := getSnapshotValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &SnapshotError{Field: jsonFieldName(verrs[0].Field()), Reason: "must be present and an array"}
	}
	return &SnapshotError{Field: "data", Reason: err.Error()}
}

// jsonFieldName maps a Snapshot struct field to its wire name.
func jsonFieldName(field string) string {
	switch field {
	case "Users":
		return "users"
	case "Assets":
		return "assets"
	case "Currencies":
		return "currencies"
	case "Paths":
		return "paths"
	}
	return field
}
