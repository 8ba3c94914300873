package movements

import "github.com/davegutierrez/shoplite-backend/pkg/enums"

// Policy decides which movement types a role may record. It is a pure
// function of role and type so the decision can be checked before any
// database work and unit tested without fixtures.
type Policy struct{}

var allowedByRole = map[enums.UserRole][]enums.MovementType{
	enums.UserRoleOwner: {
		enums.MovementTypeSaleOffline,
		enums.MovementTypeReturn,
		enums.MovementTypeCancelSale,
		enums.MovementTypeLoss,
		enums.MovementTypeAdjustment,
	},
	enums.UserRoleStaff: {
		enums.MovementTypeSaleOffline,
		enums.MovementTypeReturn,
	},
}

// AllowedTypes returns the movement types the role may record.
func (Policy) AllowedTypes(role enums.UserRole) []enums.MovementType {
	types := allowedByRole[role]
	out := make([]enums.MovementType, len(types))
	copy(out, types)
	return out
}

// Allows reports whether the role may record the given movement type.
func (Policy) Allows(role enums.UserRole, movementType enums.MovementType) bool {
	for _, candidate := range allowedByRole[role] {
		if candidate == movementType {
			return true
		}
	}
	return false
}
