package relstore

// EqualityJoin is a tuple-nested-loops equi-join: for each left tuple, in
// order, every matching right tuple is emitted before advancing to the next
// left tuple -- a stable, left-outer traversal order.
type EqualityJoin struct {
	leftField, rightField Expr
	left, right           Operator

	tid     TransactionID
	curLeft *Tuple
	pending *Tuple
}

// NewJoin constructs an equality join requiring leftField and rightField to
// share a type.
func NewJoin(left Operator, leftField Expr, right Operator, rightField Expr) (*EqualityJoin, error) {
	if leftField.GetExprType().Ftype != rightField.GetExprType().Ftype {
		return nil, NewError(IncompatibleTypesError, "join fields must share a type")
	}
	return &EqualityJoin{leftField: leftField, rightField: rightField, left: left, right: right}, nil
}

// Descriptor implements Operator: the union of left's and right's schemas.
func (j *EqualityJoin) Descriptor() *TupleDesc {
	return j.left.Descriptor().Merge(j.right.Descriptor())
}

// SetChildren implements Operator: [left, right].
func (j *EqualityJoin) SetChildren(children []Operator) {
	j.left = children[0]
	j.right = children[1]
}

// Open implements Operator.
func (j *EqualityJoin) Open(tid TransactionID) error {
	j.tid = tid
	j.curLeft = nil
	j.pending = nil
	if err := j.left.Open(tid); err != nil {
		return err
	}
	return j.right.Open(tid)
}

func (j *EqualityJoin) advanceLeft() (bool, error) {
	has, err := j.left.HasNext()
	if err != nil || !has {
		return false, err
	}
	t, err := j.left.Next()
	if err != nil {
		return false, err
	}
	j.curLeft = t
	if err := j.right.Rewind(); err != nil {
		return false, err
	}
	return true, nil
}

func (j *EqualityJoin) fill() error {
	if j.pending != nil {
		return nil
	}
	if j.curLeft == nil {
		ok, err := j.advanceLeft()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	for {
		lv, err := j.leftField.EvalExpr(j.curLeft)
		if err != nil {
			return err
		}
		for {
			has, err := j.right.HasNext()
			if err != nil {
				return err
			}
			if !has {
				break
			}
			rt, err := j.right.Next()
			if err != nil {
				return err
			}
			rv, err := j.rightField.EvalExpr(rt)
			if err != nil {
				return err
			}
			if lv.EvalPred(rv, OpEq) {
				j.pending = joinTuples(j.curLeft, rt)
				return nil
			}
		}
		ok, err := j.advanceLeft()
		if err != nil {
			return err
		}
		if !ok {
			j.curLeft = nil
			return nil
		}
	}
}

// HasNext implements Operator.
func (j *EqualityJoin) HasNext() (bool, error) {
	if err := j.fill(); err != nil {
		return false, err
	}
	return j.pending != nil, nil
}

// Next implements Operator.
func (j *EqualityJoin) Next() (*Tuple, error) {
	has, err := j.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, NewError(NoSuchElementError, "join exhausted")
	}
	t := j.pending
	j.pending = nil
	return t, nil
}

// Rewind implements Operator: restarts both children.
func (j *EqualityJoin) Rewind() error {
	j.curLeft = nil
	j.pending = nil
	if err := j.left.Rewind(); err != nil {
		return err
	}
	return j.right.Rewind()
}

// Close implements Operator.
func (j *EqualityJoin) Close() error {
	j.curLeft = nil
	j.pending = nil
	if err := j.left.Close(); err != nil {
		return err
	}
	return j.right.Close()
}
