package relstore

// InsertOp drains its child and inserts every tuple it produces into a
// table via the buffer pool, yielding a single one-field INT "count" tuple
// reporting how many were inserted. Subsequent calls after that first drain
// report exhaustion, matching the pull contract's HasNext/Next semantics.
type InsertOp struct {
	tableId int64
	bp      *BufferPool
	child   Operator

	desc *TupleDesc
	done bool
	tid  TransactionID
}

var countDesc = &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}}

// NewInsertOp constructs an insert operator that inserts child's tuples
// into tableId via bp.
func NewInsertOp(bp *BufferPool, tableId int64, child Operator) *InsertOp {
	return &InsertOp{tableId: tableId, bp: bp, child: child, desc: countDesc}
}

// Descriptor implements Operator: a one-column INT "count".
func (i *InsertOp) Descriptor() *TupleDesc { return i.desc }

// SetChildren implements Operator.
func (i *InsertOp) SetChildren(children []Operator) {
	i.child = children[0]
}

// Open implements Operator.
func (i *InsertOp) Open(tid TransactionID) error {
	i.tid = tid
	i.done = false
	return i.child.Open(tid)
}

// HasNext implements Operator: the insert has not yet been reported.
func (i *InsertOp) HasNext() (bool, error) {
	return !i.done, nil
}

// Next implements Operator: on its one call, drains the child, inserting
// each tuple, and returns the count; every later call is exhausted.
func (i *InsertOp) Next() (*Tuple, error) {
	if i.done {
		return nil, NewError(NoSuchElementError, "insert already reported its count")
	}
	var count int32
	for {
		has, err := i.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := i.child.Next()
		if err != nil {
			return nil, err
		}
		if err := i.bp.insertTuple(i.tid, i.tableId, t); err != nil {
			return nil, err
		}
		count++
	}
	i.done = true
	return &Tuple{Desc: *i.desc, Fields: []DBValue{IntField{count}}}, nil
}

// Rewind implements Operator.
func (i *InsertOp) Rewind() error {
	i.done = false
	return i.child.Rewind()
}

// Close implements Operator.
func (i *InsertOp) Close() error {
	return i.child.Close()
}
