package query

// Operation identifies the kind of task access being authorized.
type Operation int

const (
	OpRead Operation = iota
	OpUpdate
	OpStatusUpdate
	OpDelete
)

// Visibility returns the mandatory row-access predicate for the acting user.
// Read, update and status-update are allowed for the creator or the assignee;
// delete is creator-only. The result must always be AND'ed with any
// user-supplied filters, never replaced by them.
func Visibility(actorID string, op Operation) Predicate {
	if op == OpDelete {
		return Eq("creator_id", actorID)
	}
	return Or(Eq("creator_id", actorID), Eq("assignee_id", actorID))
}

// SearchClause returns the case-insensitive title-or-description substring
// predicate for a search term.
func SearchClause(term string) Predicate {
	return Or(ContainsFold("title", term), ContainsFold("description", term))
}
