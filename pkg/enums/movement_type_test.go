package enums

import "testing"

func TestParseMovementType(t *testing.T) {
	for _, valid := range validMovementTypes {
		parsed, err := ParseMovementType(string(valid))
		if err != nil {
			t.Fatalf("parse %q: %v", valid, err)
		}
		if parsed != valid {
			t.Fatalf("expected %q, got %q", valid, parsed)
		}
	}

	if _, err := ParseMovementType("SALE_OFFLINE"); err == nil {
		t.Fatal("expected error for uppercase input")
	}
	if _, err := ParseMovementType(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestMovementTypeSignTableIsTotal(t *testing.T) {
	for _, typ := range validMovementTypes {
		if _, ok := movementSigns[typ]; !ok {
			t.Fatalf("sign table missing entry for %q", typ)
		}
	}
	if len(movementSigns) != len(validMovementTypes) {
		t.Fatalf("sign table has %d entries, want %d", len(movementSigns), len(validMovementTypes))
	}
}

func TestMovementTypeSign(t *testing.T) {
	cases := map[MovementType]MovementSign{
		MovementTypeSaleOffline: SignOutbound,
		MovementTypeLoss:        SignOutbound,
		MovementTypeReturn:      SignInbound,
		MovementTypeCancelSale:  SignInbound,
		MovementTypeAdjustment:  SignPassthrough,
	}
	for typ, want := range cases {
		if got := typ.Sign(); got != want {
			t.Fatalf("sign for %q: got %v, want %v", typ, got, want)
		}
	}
	if got := MovementType("bogus").Sign(); got != SignOutbound {
		t.Fatalf("unknown type should default outbound, got %v", got)
	}
}
