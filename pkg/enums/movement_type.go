package enums

import "fmt"

// MovementType classifies rows in the stock ledger.
type MovementType string

const (
	MovementTypeSaleOffline MovementType = "sale_offline"
	MovementTypeReturn      MovementType = "return"
	MovementTypeCancelSale  MovementType = "cancel_sale"
	MovementTypeLoss        MovementType = "loss"
	MovementTypeAdjustment  MovementType = "adjustment"
)

var validMovementTypes = []MovementType{
	MovementTypeSaleOffline,
	MovementTypeReturn,
	MovementTypeCancelSale,
	MovementTypeLoss,
	MovementTypeAdjustment,
}

// String implements fmt.Stringer.
func (t MovementType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known MovementType.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}

// MovementSign describes how the stored sign of a quantity is derived from its type.
type MovementSign int

const (
	// SignOutbound stores quantities as -abs(qty).
	SignOutbound MovementSign = iota
	// SignInbound stores quantities as +abs(qty).
	SignInbound
	// SignPassthrough stores the caller's signed value unchanged.
	SignPassthrough
)

var movementSigns = map[MovementType]MovementSign{
	MovementTypeSaleOffline: SignOutbound,
	MovementTypeLoss:        SignOutbound,
	MovementTypeReturn:      SignInbound,
	MovementTypeCancelSale:  SignInbound,
	MovementTypeAdjustment:  SignPassthrough,
}

// Sign returns the sign convention for the movement type. The table is total
// over the valid types; unknown values fall back to outbound, which is the
// safe direction because it can never inflate stock.
func (t MovementType) Sign() MovementSign {
	if sign, ok := movementSigns[t]; ok {
		return sign
	}
	return SignOutbound
}
