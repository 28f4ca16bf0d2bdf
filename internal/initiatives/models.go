package initiatives

import (
	"time"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Status tracks an initiative from plan to completion.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPlanned:   true,
	StatusOngoing:   true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ParseStatus constructs a Status from external input. Empty defaults to
// planned.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusPlanned, nil
	}
	status := Status(s)
	if !validStatuses[status] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported initiative status %q", s)
	}
	return status, nil
}

func (s Status) String() string { return string(s) }

// allowedTransitions encodes the planned → ongoing → completed|cancelled
// lifecycle. Cancellation is allowed from any non-terminal state.
var allowedTransitions = map[Status][]Status{
	StatusPlanned: {StatusOngoing, StatusCancelled},
	StatusOngoing: {StatusCompleted, StatusCancelled},
}

func (s Status) canTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Initiative is one mitigation project: what it should save per year, what
// it actually saved, and what it cost.
type Initiative struct {
	ID          domain.InitiativeID
	CompanyID   domain.CompanyID
	Name        string
	Description string
	// InitiativeType labels the mitigation approach (energy_efficiency,
	// renewable, process_change, ...). Free-form.
	InitiativeType string
	TargetScope    domain.Scope
	StartDate      *time.Time
	EndDate        *time.Time
	Investment     float64
	// ExpectedReductionCO2e and ActualReductionCO2e are annual figures in
	// tonnes CO2e.
	ExpectedReductionCO2e float64
	ActualReductionCO2e   float64
	Status                Status
	Notes                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// PaybackYears estimates how many years the investment takes to pay for
// itself given a carbon price in currency per tonne CO2e. The price is an
// externally supplied proxy; this package does not source it. Undefined
// when the expected annual saving is zero.
func (i *Initiative) PaybackYears(carbonPrice float64) (float64, error) {
	if carbonPrice <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "carbon price must be positive")
	}
	annualSaving := i.ExpectedReductionCO2e * carbonPrice
	if annualSaving == 0 {
		return 0, dErrors.New(dErrors.CodeInvariantViolation,
			"payback is undefined without an expected reduction")
	}
	return i.Investment / annualSaving, nil
}
