package relstore

// LimitOp caps its child's output at the first lim tuples, where lim is
// evaluated once, at Open, against a nil tuple (it is always a constant
// expression).
type LimitOp struct {
	child     Operator
	limitTups Expr

	limit int32
	seen  int32
}

// NewLimitOp constructs a limit operator yielding at most lim tuples from
// child.
func NewLimitOp(lim Expr, child Operator) *LimitOp {
	return &LimitOp{child: child, limitTups: lim}
}

// Descriptor implements Operator: unchanged from the child.
func (l *LimitOp) Descriptor() *TupleDesc {
	return l.child.Descriptor()
}

// SetChildren implements Operator.
func (l *LimitOp) SetChildren(children []Operator) {
	l.child = children[0]
}

// Open implements Operator.
func (l *LimitOp) Open(tid TransactionID) error {
	v, err := l.limitTups.EvalExpr(nil)
	if err != nil {
		return err
	}
	iv, ok := v.(IntField)
	if !ok {
		return NewError(TypeMismatchError, "limit expression must evaluate to an INT")
	}
	l.limit = iv.Value
	l.seen = 0
	return l.child.Open(tid)
}

// HasNext implements Operator.
func (l *LimitOp) HasNext() (bool, error) {
	if l.seen >= l.limit {
		return false, nil
	}
	return l.child.HasNext()
}

// Next implements Operator.
func (l *LimitOp) Next() (*Tuple, error) {
	has, err := l.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, NewError(NoSuchElementError, "limit exhausted")
	}
	t, err := l.child.Next()
	if err != nil {
		return nil, err
	}
	l.seen++
	return t, nil
}

// Rewind implements Operator.
func (l *LimitOp) Rewind() error {
	l.seen = 0
	return l.child.Rewind()
}

// Close implements Operator.
func (l *LimitOp) Close() error {
	return l.child.Close()
}
