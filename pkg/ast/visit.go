package ast

// VisitResult tells VisitChildren how to continue after a callback.
type VisitResult int

const (
	// VisitBreak stops the whole visit.
	VisitBreak VisitResult = iota
	// VisitContinue moves on to the next sibling without entering the
	// current cursor's children.
	VisitContinue
	// VisitRecurse enters the current cursor's children, using the same
	// callback, before moving on to the next sibling.
	VisitRecurse
)

// Visitor is called once per visited cursor with the cursor whose children
// are being enumerated.
type Visitor func(cursor, parent *Cursor) VisitResult

// VisitChildren calls fn for each child of c in source order. It reports
// whether the visit was stopped by VisitBreak, including a break returned
// from inside a recursion.
func VisitChildren(c *Cursor, fn Visitor) bool {
	if c == nil {
		return false
	}
	for _, child := range c.children {
		switch fn(child, c) {
		case VisitBreak:
			return true
		case VisitRecurse:
			if VisitChildren(child, fn) {
				return true
			}
		}
	}
	return false
}
