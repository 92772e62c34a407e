package enums

import "fmt"

// PartyRole represents the canonical party_role enum in Postgres. A party
// starts as a customer or supplier and is promoted to "both" rather than
// duplicated when it appears on the other side of the ledger.
type PartyRole string

const (
	PartyRoleCustomer PartyRole = "customer"
	PartyRoleSupplier PartyRole = "supplier"
	PartyRoleBoth     PartyRole = "both"
)

var validPartyRoles = []PartyRole{
	PartyRoleCustomer,
	PartyRoleSupplier,
	PartyRoleBoth,
}

// String implements fmt.Stringer.
func (r PartyRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known PartyRole.
func (r PartyRole) IsValid() bool {
	for _, candidate := range validPartyRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AllowsSupplierUse reports whether the role permits supplier-side operations.
func (r PartyRole) AllowsSupplierUse() bool {
	return r == PartyRoleSupplier || r == PartyRoleBoth
}

// ParsePartyRole converts raw input into a PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	for _, candidate := range validPartyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party role %q", value)
}
