package targets

import (
	"time"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// TargetType distinguishes absolute reduction targets from
// intensity-normalized ones (per unit of revenue, headcount, production).
type TargetType string

const (
	TypeAbsolute  TargetType = "absolute"
	TypeIntensity TargetType = "intensity"
)

// ParseTargetType constructs a TargetType from external input. Empty
// defaults to absolute.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case "":
		return TypeAbsolute, nil
	case TypeAbsolute, TypeIntensity:
		return TargetType(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported target type %q", s)
}

func (t TargetType) String() string { return string(t) }

// Status tracks a target through its lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusAchieved Status = "achieved"
	StatusMissed   Status = "missed"
	StatusRevised  Status = "revised"
)

var validStatuses = map[Status]bool{
	StatusActive:   true,
	StatusAchieved: true,
	StatusMissed:   true,
	StatusRevised:  true,
}

// ParseStatus constructs a Status from external input. Empty defaults to
// active.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusActive, nil
	}
	status := Status(s)
	if !validStatuses[status] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported target status %q", s)
	}
	return status, nil
}

func (s Status) String() string { return string(s) }

// Target is one reduction commitment: from the baseline year's footprint
// to a lower figure by the target year. ScopeCoverage names which scopes
// the target covers ("all", "scope1,scope2", ...); it is a label, not a
// filter applied by this package.
type Target struct {
	ID              domain.TargetID
	CompanyID       domain.CompanyID
	Description     string
	BaselineYear    int
	BaselineCO2e    float64
	TargetYear      int
	TargetCO2e      float64
	ScopeCoverage   string
	Type            TargetType
	IntensityMetric string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Progress reports how far actual emissions have moved from the baseline
// toward the target, as a percentage clamped to [0,100]. It is undefined
// when baseline and target are equal; that case returns an invariant
// violation rather than a silent zero.
func (t *Target) Progress(actualCO2e float64) (float64, error) {
	if t.BaselineCO2e == t.TargetCO2e {
		return 0, dErrors.New(dErrors.CodeInvariantViolation,
			"progress is undefined when baseline equals target")
	}
	pct := (t.BaselineCO2e - actualCO2e) / (t.BaselineCO2e - t.TargetCO2e) * 100
	if pct < 0 {
		return 0, nil
	}
	if pct > 100 {
		return 100, nil
	}
	return pct, nil
}
