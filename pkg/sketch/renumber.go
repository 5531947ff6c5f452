package sketch

// Reference renumbering. Deleting sketch geometry compacts the id
// space: internal ids above the deleted one shift down by one, and
// when an external reference is deleted, external ids below it shift
// up toward zero. The fixed frame ids (-1, -2) never move.

// AdjustConstraintForDeletedGeometry rewrites a constraint's references
// after the element with geoId deleted was removed. It returns a copy
// with adjusted ids, or nil when the constraint referenced the deleted
// element and must be dropped. A nil constraint passes through as nil.
func AdjustConstraintForDeletedGeometry(c *Constraint, deleted int) *Constraint {
	if c == nil {
		return nil
	}
	cc := c.Clone()
	if !adjustInPlace(cc, deleted) {
		return nil
	}
	return cc
}

// ChangeConstraintAfterDeletingGeo rewrites the constraint's references
// in place. A constraint referencing the deleted element is not dropped:
// its Type becomes None so the caller can filter it out later. A nil
// constraint is a no-op.
func ChangeConstraintAfterDeletingGeo(c *Constraint, deleted int) {
	if c == nil {
		return
	}
	if !adjustInPlace(c, deleted) {
		c.Type = None
	}
}

// adjustInPlace applies the renumbering rules directly, reporting false
// when the constraint references the deleted element.
func adjustInPlace(c *Constraint, deleted int) bool {
	for _, slot := range c.slots() {
		if *slot == deleted {
			return false
		}
	}
	for _, slot := range c.slots() {
		switch {
		case deleted >= 0 && *slot > deleted:
			*slot--
		case deleted <= RefExt && *slot < deleted:
			*slot++
		}
	}
	return true
}
