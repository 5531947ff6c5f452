package sketch

import "testing"

func coincidentBetween(first, second int) *Constraint {
	c := NewConstraint(Coincident)
	c.First = first
	c.FirstPos = PosEnd
	c.Second = second
	c.SecondPos = PosStart
	return c
}

func TestAdjustShiftsInternalReferencesDown(t *testing.T) {
	c := coincidentBetween(42, 10)

	got := AdjustConstraintForDeletedGeometry(c, 5)

	if got == nil {
		t.Fatal("constraint should survive")
	}
	if got.First != 41 || got.Second != 9 {
		t.Errorf("refs = (%d, %d), want (41, 9)", got.First, got.Second)
	}
	// The input is untouched.
	if c.First != 42 || c.Second != 10 {
		t.Errorf("input mutated to (%d, %d)", c.First, c.Second)
	}
}

func TestAdjustLeavesLowerReferencesAlone(t *testing.T) {
	c := coincidentBetween(3, 7)

	got := AdjustConstraintForDeletedGeometry(c, 7)
	if got != nil {
		t.Fatal("constraint referencing the deleted element should drop")
	}

	got = AdjustConstraintForDeletedGeometry(coincidentBetween(3, 8), 7)
	if got.First != 3 || got.Second != 7 {
		t.Errorf("refs = (%d, %d), want (3, 7)", got.First, got.Second)
	}
}

func TestAdjustDropsOnAnySlotMatch(t *testing.T) {
	c := coincidentBetween(2, 5)
	c.Third = 10
	c.ThirdPos = PosMid

	if got := AdjustConstraintForDeletedGeometry(c, 10); got != nil {
		t.Error("third-slot match should drop the constraint")
	}
}

func TestAdjustExternalReferencesShiftTowardZero(t *testing.T) {
	c := coincidentBetween(-8, 2)

	got := AdjustConstraintForDeletedGeometry(c, -3)

	if got == nil {
		t.Fatal("constraint should survive")
	}
	if got.First != -7 {
		t.Errorf("external ref = %d, want -7", got.First)
	}
	if got.Second != 2 {
		t.Errorf("internal ref = %d, want 2", got.Second)
	}
}

func TestAdjustExternalDeleteDropsDirectReference(t *testing.T) {
	if got := AdjustConstraintForDeletedGeometry(coincidentBetween(-4, 1), -4); got != nil {
		t.Error("constraint on the deleted external should drop")
	}
	// Externals closer to zero than the deleted one stay put.
	got := AdjustConstraintForDeletedGeometry(coincidentBetween(-3, 1), -4)
	if got == nil || got.First != -3 {
		t.Errorf("got %+v, want First -3", got)
	}
}

func TestAdjustKeepsFrameAndUndefSlots(t *testing.T) {
	c := NewConstraint(PointOnObject)
	c.First = 6
	c.FirstPos = PosStart
	c.Second = HAxis

	got := AdjustConstraintForDeletedGeometry(c, -5)
	if got.First != 6 || got.Second != HAxis || got.Third != GeoUndef {
		t.Errorf("got (%d, %d, %d)", got.First, got.Second, got.Third)
	}
}

func TestAdjustNilConstraint(t *testing.T) {
	if got := AdjustConstraintForDeletedGeometry(nil, 3); got != nil {
		t.Error("nil in, nil out")
	}
}

func TestChangeInPlaceRenumbersReferences(t *testing.T) {
	c := coincidentBetween(1, 2)

	ChangeConstraintAfterDeletingGeo(c, 0)

	if c.Type != Coincident {
		t.Fatalf("type = %v, want Coincident", c.Type)
	}
	if c.First != 0 || c.Second != 1 {
		t.Errorf("refs = (%d, %d), want (0, 1)", c.First, c.Second)
	}
}

func TestChangeInPlaceInvalidatesInsteadOfDropping(t *testing.T) {
	c := coincidentBetween(0, 1)

	ChangeConstraintAfterDeletingGeo(c, 0)

	if c.Type != None {
		t.Errorf("type = %v, want None", c.Type)
	}
}

func TestChangeInPlaceNilIsNoOp(t *testing.T) {
	ChangeConstraintAfterDeletingGeo(nil, 0)
}
