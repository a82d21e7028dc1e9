package relstore

// DeleteOp drains its child and deletes every tuple it produces (via its
// RecordID) from the buffer pool, yielding a single one-field INT "count"
// tuple reporting how many were deleted. Symmetric to InsertOp.
type DeleteOp struct {
	bp    *BufferPool
	child Operator

	desc *TupleDesc
	done bool
	tid  TransactionID
}

// NewDeleteOp constructs a delete operator that deletes child's tuples via bp.
func NewDeleteOp(bp *BufferPool, child Operator) *DeleteOp {
	return &DeleteOp{bp: bp, child: child, desc: countDesc}
}

// Descriptor implements Operator: a one-column INT "count".
func (d *DeleteOp) Descriptor() *TupleDesc { return d.desc }

// SetChildren implements Operator.
func (d *DeleteOp) SetChildren(children []Operator) {
	d.child = children[0]
}

// Open implements Operator.
func (d *DeleteOp) Open(tid TransactionID) error {
	d.tid = tid
	d.done = false
	return d.child.Open(tid)
}

// HasNext implements Operator.
func (d *DeleteOp) HasNext() (bool, error) {
	return !d.done, nil
}

// Next implements Operator: on its one call, drains the child, deleting
// each tuple, and returns the count.
func (d *DeleteOp) Next() (*Tuple, error) {
	if d.done {
		return nil, NewError(NoSuchElementError, "delete already reported its count")
	}
	var count int32
	for {
		has, err := d.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := d.child.Next()
		if err != nil {
			return nil, err
		}
		if err := d.bp.deleteTuple(d.tid, t); err != nil {
			return nil, err
		}
		count++
	}
	d.done = true
	return &Tuple{Desc: *d.desc, Fields: []DBValue{IntField{count}}}, nil
}

// Rewind implements Operator.
func (d *DeleteOp) Rewind() error {
	d.done = false
	return d.child.Rewind()
}

// Close implements Operator.
func (d *DeleteOp) Close() error {
	return d.child.Close()
}
