package domain

import dErrors "carbonledger/pkg/domain-errors"

// Scope identifies the GHG Protocol scope of an emission.
// Invariant: the value must be one of the three protocol scopes.
type Scope int

const (
	// Scope1 covers direct emissions from owned or controlled sources.
	Scope1 Scope = 1
	// Scope2 covers indirect emissions from purchased energy.
	Scope2 Scope = 2
	// Scope3 covers all other value-chain emissions.
	Scope3 Scope = 3
)

var scopeLabels = map[Scope]string{
	Scope1: "scope1",
	Scope2: "scope2",
	Scope3: "scope3",
}

var scopesByLabel = map[string]Scope{
	"scope1": Scope1,
	"scope2": Scope2,
	"scope3": Scope3,
}

// ParseScope constructs a Scope from its persisted label ("scope1" etc).
//
// Errors: returns CodeInvalidInput when the label is empty or unsupported.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "scope cannot be empty")
	}
	scope, ok := scopesByLabel[s]
	if !ok {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported scope %q", s)
	}
	return scope, nil
}

// IsValid checks if the scope is one of the three protocol scopes.
func (s Scope) IsValid() bool {
	_, ok := scopeLabels[s]
	return ok
}

// String returns the persisted label for the scope.
func (s Scope) String() string {
	if label, ok := scopeLabels[s]; ok {
		return label
	}
	return "unknown"
}
