package access

// Operation identifies the kind of list operation under check.
type Operation string

const (
	// OperationCreate inserts a new item from incoming input.
	OperationCreate Operation = "create"
	// OperationRead fetches or lists stored items.
	OperationRead Operation = "read"
	// OperationUpdate applies incoming input to a stored item.
	OperationUpdate Operation = "update"
	// OperationDelete removes a stored item. Delete has no field-level hook,
	// removal is a list-level decision.
	OperationDelete Operation = "delete"
)

// Valid checks if the operation is one of the four known kinds.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationRead, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// IsMutation checks if the operation writes data.
func (op Operation) IsMutation() bool {
	return op == OperationCreate || op == OperationUpdate || op == OperationDelete
}

// String returns the wire name of the operation.
func (op Operation) String() string {
	return string(op)
}
