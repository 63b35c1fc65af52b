// Package publish emits horse status changes to the status event log.
package publish

import (
	"context"
	"time"
)

// Status operations
const (
	OpRadiate         = "radiate"
	OpCancelRadiation = "cancel-radiation"
	OpMutate          = "mutate"
	OpCancelMutation  = "cancel-mutation"
)

// StatusEvent records one committed status operation on a horse
type StatusEvent struct {
	Operation string    `json:"operation"`
	HorseID   string    `json:"horse"`
	HorseNum  int       `json:"horseId"`
	IsRadie   bool      `json:"isRadie"`
	IsMutated bool      `json:"isMutated"`
	Motif     string    `json:"motifderadiation,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers status events
type Publisher interface {
	PublishStatus(ctx context.Context, event StatusEvent) error
	Close() error
}

// Noop discards events; used when no brokers are configured
type Noop struct{}

func (Noop) PublishStatus(context.Context, StatusEvent) error { return nil }
func (Noop) Close() error                                     { return nil }
