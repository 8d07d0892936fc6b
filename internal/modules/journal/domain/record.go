package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRecordNotFound = errors.New("journal record not found")
	ErrBadTransition  = errors.New("invalid journal transition")
)

type Status string

const (
	StatusDispatched Status = "dispatched"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

func (s Status) Validate() error {
	switch s {
	case StatusDispatched, StatusCompleted, StatusFailed, StatusCanceled:
		return nil
	default:
		return fmt.Errorf("unknown journal status: %s", s)
	}
}

// CanTransition allows dispatched to settle exactly once; completed,
// failed and canceled are terminal.
func CanTransition(from, to Status) bool {
	if from != StatusDispatched {
		return false
	}
	return to == StatusCompleted || to == StatusFailed || to == StatusCanceled
}

// Record is one journaled operation. ItemCount counts the items the
// operation carried, whether singular or bulk.
type Record struct {
	ID          string
	OperationID string
	Processor   string
	ItemCount   int
	Bulk        bool
	Status      Status
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("journal record id is required")
	}
	if r.OperationID == "" {
		return fmt.Errorf("journal operation id is required")
	}
	if r.Processor == "" {
		return fmt.Errorf("journal processor name is required")
	}
	return r.Status.Validate()
}
