package relstore

import (
	boom "github.com/tylertreat/BoomFilters"
)

// Project yields a projection of the child's tuples onto a declared field
// list, optionally suppressing duplicate output rows.
type Project struct {
	selectFields []Expr
	outputNames  []string
	distinct     bool
	child        Operator

	desc    *TupleDesc
	pending *Tuple

	seen   map[string]struct{}
	filter *boom.BloomFilter
}

// NewProjectOp constructs a projection operator. selectFields and
// outputNames must be the same length.
func NewProjectOp(selectFields []Expr, outputNames []string, distinct bool, child Operator) (Operator, error) {
	if len(selectFields) != len(outputNames) {
		return nil, NewError(IncompatibleTypesError, "selectFields and outputNames must have the same length")
	}
	fields := make([]FieldType, len(selectFields))
	for i, e := range selectFields {
		ft := e.GetExprType()
		ft.Fname = outputNames[i]
		fields[i] = ft
	}
	return &Project{
		selectFields: selectFields,
		outputNames:  outputNames,
		distinct:     distinct,
		child:        child,
		desc:         &TupleDesc{Fields: fields},
	}, nil
}

// Descriptor implements Operator.
func (p *Project) Descriptor() *TupleDesc { return p.desc }

// SetChildren implements Operator.
func (p *Project) SetChildren(children []Operator) {
	p.child = children[0]
}

// Open implements Operator. A fresh Bloom filter is seeded per-open so a
// re-opened distinct projection starts from an empty duplicate set.
func (p *Project) Open(tid TransactionID) error {
	p.pending = nil
	if p.distinct {
		p.seen = make(map[string]struct{})
		p.filter = boom.NewBloomFilter(10000, 0.01)
	}
	return p.child.Open(tid)
}

func (p *Project) project(t *Tuple) (*Tuple, error) {
	out := &Tuple{Desc: *p.desc, Fields: make([]DBValue, len(p.selectFields))}
	for i, e := range p.selectFields {
		v, err := e.EvalExpr(t)
		if err != nil {
			return nil, err
		}
		out.Fields[i] = v
	}
	return out, nil
}

// isDuplicate reports whether out has already been emitted, using the Bloom
// filter to skip the exact-set lookup for the common not-seen-before case:
// a negative from TestAndAdd is certain, so only a positive needs the exact
// map to rule out a false positive.
func (p *Project) isDuplicate(out *Tuple) bool {
	key := out.tupleKey()
	maybeSeen := p.filter.TestAndAdd([]byte(key))
	if !maybeSeen {
		p.seen[key] = struct{}{}
		return false
	}
	if _, ok := p.seen[key]; ok {
		return true
	}
	p.seen[key] = struct{}{}
	return false
}

func (p *Project) fill() error {
	if p.pending != nil {
		return nil
	}
	for {
		has, err := p.child.HasNext()
		if err != nil || !has {
			return err
		}
		t, err := p.child.Next()
		if err != nil {
			return err
		}
		out, err := p.project(t)
		if err != nil {
			return err
		}
		if p.distinct && p.isDuplicate(out) {
			continue
		}
		p.pending = out
		return nil
	}
}

// HasNext implements Operator.
func (p *Project) HasNext() (bool, error) {
	if err := p.fill(); err != nil {
		return false, err
	}
	return p.pending != nil, nil
}

// Next implements Operator.
func (p *Project) Next() (*Tuple, error) {
	has, err := p.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, NewError(NoSuchElementError, "project exhausted")
	}
	t := p.pending
	p.pending = nil
	return t, nil
}

// Rewind implements Operator.
func (p *Project) Rewind() error {
	p.pending = nil
	if p.distinct {
		p.seen = make(map[string]struct{})
		p.filter = boom.NewBloomFilter(10000, 0.01)
	}
	return p.child.Rewind()
}

// Close implements Operator.
func (p *Project) Close() error {
	p.pending = nil
	p.seen = nil
	p.filter = nil
	return p.child.Close()
}
