package movements

import (
	"testing"

	"github.com/davegutierrez/shoplite-backend/pkg/enums"
)

func TestPolicyOwnerMayRecordEverything(t *testing.T) {
	var policy Policy
	for _, movementType := range []enums.MovementType{
		enums.MovementTypeSaleOffline,
		enums.MovementTypeReturn,
		enums.MovementTypeCancelSale,
		enums.MovementTypeLoss,
		enums.MovementTypeAdjustment,
	} {
		if !policy.Allows(enums.UserRoleOwner, movementType) {
			t.Errorf("owner should be allowed to record %s", movementType)
		}
	}
}

func TestPolicyStaffIsLimitedToSalesAndReturns(t *testing.T) {
	var policy Policy

	allowed := map[enums.MovementType]bool{
		enums.MovementTypeSaleOffline: true,
		enums.MovementTypeReturn:      true,
	}
	for _, movementType := range []enums.MovementType{
		enums.MovementTypeSaleOffline,
		enums.MovementTypeReturn,
		enums.MovementTypeCancelSale,
		enums.MovementTypeLoss,
		enums.MovementTypeAdjustment,
	} {
		got := policy.Allows(enums.UserRoleStaff, movementType)
		if got != allowed[movementType] {
			t.Errorf("staff Allows(%s) = %v, want %v", movementType, got, allowed[movementType])
		}
	}
}

func TestPolicyUnknownRoleGetsNothing(t *testing.T) {
	var policy Policy
	if types := policy.AllowedTypes(enums.UserRole("intern")); len(types) != 0 {
		t.Errorf("unknown role allowed types = %v, want none", types)
	}
}

func TestAllowedTypesReturnsCopy(t *testing.T) {
	var policy Policy
	types := policy.AllowedTypes(enums.UserRoleStaff)
	if len(types) != 2 {
		t.Fatalf("staff allowed types = %v, want 2 entries", types)
	}
	types[0] = enums.MovementTypeAdjustment
	if policy.Allows(enums.UserRoleStaff, enums.MovementTypeAdjustment) {
		t.Error("mutating the returned slice changed the policy")
	}
}
