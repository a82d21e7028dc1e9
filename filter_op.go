package relstore

// Filter yields only the child's tuples satisfying a single comparison
// between two expressions (typically a field against a constant).
type Filter struct {
	op    BoolOp
	left  Expr
	right Expr
	child Operator

	pending *Tuple
}

// NewFilter constructs a filter yielding tuples where left op right holds.
func NewFilter(left Expr, op BoolOp, right Expr, child Operator) (*Filter, error) {
	return &Filter{left: left, op: op, right: right, child: child}, nil
}

// Descriptor implements Operator: unchanged from the child.
func (f *Filter) Descriptor() *TupleDesc {
	return f.child.Descriptor()
}

// SetChildren implements Operator.
func (f *Filter) SetChildren(children []Operator) {
	f.child = children[0]
}

// Open implements Operator.
func (f *Filter) Open(tid TransactionID) error {
	f.pending = nil
	return f.child.Open(tid)
}

func (f *Filter) fill() error {
	if f.pending != nil {
		return nil
	}
	for {
		has, err := f.child.HasNext()
		if err != nil || !has {
			return err
		}
		t, err := f.child.Next()
		if err != nil {
			return err
		}
		lv, err := f.left.EvalExpr(t)
		if err != nil {
			return err
		}
		rv, err := f.right.EvalExpr(t)
		if err != nil {
			return err
		}
		if lv.EvalPred(rv, f.op) {
			f.pending = t
			return nil
		}
	}
}

// HasNext implements Operator.
func (f *Filter) HasNext() (bool, error) {
	if err := f.fill(); err != nil {
		return false, err
	}
	return f.pending != nil, nil
}

// Next implements Operator.
func (f *Filter) Next() (*Tuple, error) {
	has, err := f.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, NewError(NoSuchElementError, "filter exhausted")
	}
	t := f.pending
	f.pending = nil
	return t, nil
}

// Rewind implements Operator.
func (f *Filter) Rewind() error {
	f.pending = nil
	return f.child.Rewind()
}

// Close implements Operator.
func (f *Filter) Close() error {
	f.pending = nil
	return f.child.Close()
}
