package audit

import (
	"context"
	"time"

	id "carbonledger/pkg/domain"
)

// Event captures one auditable action against the emission ledger or the
// factor catalogue. Keep it transport-agnostic so stores and sinks can fan
// out.
type Event struct {
	Timestamp time.Time
	CompanyID id.CompanyID
	// Subject identifies the entity acted on: a record ID, a factor ID.
	Subject string
	Action  string
	// Actor tracks who performed the action when known (API caller,
	// import job).
	Actor  string
	Reason string
}

// LedgerEvent enumerates the auditable ledger and catalogue actions.
type LedgerEvent string

const (
	EventEmissionRecorded     LedgerEvent = "emission_recorded"
	EventEmissionsImported    LedgerEvent = "emissions_imported"
	EventEmissionCorrected    LedgerEvent = "emission_corrected"
	EventEmissionDeleted      LedgerEvent = "emission_deleted"
	EventFactorOverrideSaved  LedgerEvent = "factor_override_saved"
	EventTargetCreated        LedgerEvent = "target_created"
	EventInitiativeRegistered LedgerEvent = "initiative_registered"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]Event, error)
}

// Sink forwards events to an external system (message broker, SIEM).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
