package access

// ListAccess holds the list-level predicates of a list, one per operation.
// A nil predicate allows the operation.
type ListAccess struct {
	Create Predicate
	Read   Predicate
	Update Predicate
	Delete Predicate
}

// ForOperation returns the predicate guarding op, nil when the list leaves
// the operation open.
func (a ListAccess) ForOperation(op Operation) Predicate {
	switch op {
	case OperationCreate:
		return a.Create
	case OperationRead:
		return a.Read
	case OperationUpdate:
		return a.Update
	case OperationDelete:
		return a.Delete
	default:
		return nil
	}
}
