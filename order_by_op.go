package relstore

import "sort"

// OrderBy fully materializes its child's output and sorts it by one or more
// expressions, each with its own ascending/descending direction, then
// replays it tuple by tuple. It does not change the tuples' schema.
type OrderBy struct {
	orderBy   []Expr
	ascending []bool
	child     Operator

	rows []*Tuple
	pos  int
}

// NewOrderBy constructs an order-by operator. orderByFields and ascending
// must be the same length; ascending[i] true sorts orderByFields[i]
// ascending, false descending.
func NewOrderBy(orderByFields []Expr, child Operator, ascending []bool) (*OrderBy, error) {
	return &OrderBy{orderBy: orderByFields, ascending: ascending, child: child}, nil
}

// Descriptor implements Operator: unchanged from the child.
func (o *OrderBy) Descriptor() *TupleDesc {
	return o.child.Descriptor()
}

// SetChildren implements Operator.
func (o *OrderBy) SetChildren(children []Operator) {
	o.child = children[0]
}

// Open implements Operator: drains the child and sorts the full result set.
func (o *OrderBy) Open(tid TransactionID) error {
	if err := o.child.Open(tid); err != nil {
		return err
	}

	var rows []*Tuple
	for {
		has, err := o.child.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		t, err := o.child.Next()
		if err != nil {
			return err
		}
		rows = append(rows, t)
	}

	sorter := &orderBySorter{rows: rows, orderBy: o.orderBy, ascending: o.ascending}
	sort.Stable(sorter)
	o.rows = rows
	o.pos = 0
	return nil
}

// HasNext implements Operator.
func (o *OrderBy) HasNext() (bool, error) {
	return o.pos < len(o.rows), nil
}

// Next implements Operator.
func (o *OrderBy) Next() (*Tuple, error) {
	if o.pos >= len(o.rows) {
		return nil, NewError(NoSuchElementError, "order by exhausted")
	}
	t := o.rows[o.pos]
	o.pos++
	return t, nil
}

// Rewind implements Operator: replays the already-sorted rows without
// re-consuming or re-sorting the child.
func (o *OrderBy) Rewind() error {
	o.pos = 0
	return nil
}

// Close implements Operator.
func (o *OrderBy) Close() error {
	o.rows = nil
	o.pos = 0
	return o.child.Close()
}

type orderBySorter struct {
	rows      []*Tuple
	orderBy   []Expr
	ascending []bool
}

func (s *orderBySorter) Len() int { return len(s.rows) }

func (s *orderBySorter) Swap(i, j int) { s.rows[i], s.rows[j] = s.rows[j], s.rows[i] }

func (s *orderBySorter) Less(i, j int) bool {
	a, b := s.rows[i], s.rows[j]
	for k, expr := range s.orderBy {
		order, err := a.compareField(b, expr)
		if err != nil || order == OrderedEqual {
			continue
		}
		if s.ascending[k] {
			return order == OrderedLessThan
		}
		return order == OrderedGreaterThan
	}
	return false
}
