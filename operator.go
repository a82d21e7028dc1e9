package relstore

// Operator is the uniform pull contract every query node implements: a
// tree of Operators forms a query plan, and each step through Next draws
// exactly one tuple further.
type Operator interface {
	// Descriptor reports this operator's output schema.
	Descriptor() *TupleDesc
	// Open prepares the operator (and its children) to be pulled from. Safe
	// to call again after Close to restart the operator from scratch.
	Open(tid TransactionID) error
	// HasNext reports whether Next has another tuple to yield, without
	// consuming it.
	HasNext() (bool, error)
	// Next returns the next tuple, or fails with NoSuchElementError once
	// the operator is exhausted.
	Next() (*Tuple, error)
	// Rewind resets the operator to replay its output from the start
	// without a full Close/Open cycle.
	Rewind() error
	// Close releases any resources Open acquired.
	Close() error
	// SetChildren replaces this operator's child operators, in the order
	// the operator declares them (e.g. [left, right] for a join).
	SetChildren(children []Operator)
}
