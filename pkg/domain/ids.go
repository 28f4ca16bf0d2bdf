package domain

import (
	"github.com/google/uuid"

	dErrors "carbonledger/pkg/domain-errors"
)

// Typed UUID wrappers keep company, record, target and initiative
// identifiers from being used interchangeably. Construct via the Parse
// functions at trust boundaries; direct casting bypasses validation.
type (
	CompanyID    uuid.UUID
	RecordID     uuid.UUID
	TargetID     uuid.UUID
	InitiativeID uuid.UUID
)

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return u, nil
}

// ParseCompanyID constructs a CompanyID from external input.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID(s)
	return CompanyID(u), err
}

// ParseRecordID constructs a RecordID from external input.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s)
	return RecordID(u), err
}

// ParseTargetID constructs a TargetID from external input.
func ParseTargetID(s string) (TargetID, error) {
	u, err := parseUUID(s)
	return TargetID(u), err
}

// ParseInitiativeID constructs an InitiativeID from external input.
func ParseInitiativeID(s string) (InitiativeID, error) {
	u, err := parseUUID(s)
	return InitiativeID(u), err
}

// NewCompanyID allocates a fresh company identifier.
func NewCompanyID() CompanyID { return CompanyID(uuid.New()) }

// NewRecordID allocates a fresh record identifier.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewTargetID allocates a fresh target identifier.
func NewTargetID() TargetID { return TargetID(uuid.New()) }

// NewInitiativeID allocates a fresh initiative identifier.
func NewInitiativeID() InitiativeID { return InitiativeID(uuid.New()) }

func (id CompanyID) String() string    { return uuid.UUID(id).String() }
func (id RecordID) String() string     { return uuid.UUID(id).String() }
func (id TargetID) String() string     { return uuid.UUID(id).String() }
func (id InitiativeID) String() string { return uuid.UUID(id).String() }

func (id CompanyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TargetID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id InitiativeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
