package bulk

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Phase is where a batch sits in its Confirm -> Processing -> Complete lifecycle
type Phase int

const (
	PhaseConfirm Phase = iota
	PhaseProcessing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseConfirm:
		return "confirm"
	case PhaseProcessing:
		return "processing"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ItemResult is the outcome of a single item in a batch
type ItemResult struct {
	ID           string
	Success      bool
	ErrorMessage string
}

// Failure records an item whose operation failed
type Failure struct {
	ID           string
	ErrorMessage string
	Err          error
}

// Progress is the engine state the presentation layer reads on every tick
type Progress struct {
	BatchID   string
	Operation Operation
	Phase     Phase
	Percent   float64 // 0..100, non-decreasing
	Total     int
	Processed int
	Succeeded int
	Failed    []Failure
	Last      ItemResult // item that settled most recently
}

// Outcome is the final tally of a batch
type Outcome struct {
	BatchID         string
	Operation       Operation
	Total           int
	Succeeded       int
	Failed          []Failure
	ProgressPercent float64
}

// OK reports whether every item succeeded
func (o Outcome) OK() bool {
	return len(o.Failed) == 0
}

// Summary returns "X succeeded, Y failed"
func (o Outcome) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", o.Succeeded, len(o.Failed))
}

// Err aggregates every failed item into one error, or nil if none failed
func (o Outcome) Err() error {
	var result *multierror.Error
	for _, f := range o.Failed {
		err := f.Err
		if err == nil {
			err = errors.New(f.ErrorMessage)
		}
		result = multierror.Append(result, fmt.Errorf("%s %s: %w", o.Operation, f.ID, err))
	}
	return result.ErrorOrNil()
}

func copyFailures(failed []Failure) []Failure {
	if failed == nil {
		return nil
	}
	out := make([]Failure, len(failed))
	copy(out, failed)
	return out
}
