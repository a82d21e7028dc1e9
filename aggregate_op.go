package relstore

// AggType names the supported aggregate operators.
type AggType int

const (
	MinAgg AggType = iota
	MaxAgg
	SumAgg
	AvgAgg
	CountAgg
)

// Aggregate is a single-pass group-by over one aggregate field. On Open it
// fully consumes its child into a hashmap keyed by the group-by value (or a
// single bucket when there is no group-by field), then yields one result
// tuple per bucket.
type Aggregate struct {
	child     Operator
	aggField  Expr
	aggOp     AggType
	aggAlias  string
	groupField Expr // nil when there is no GROUP BY

	desc    *TupleDesc
	results []*Tuple
	pos     int
}

const noGroupKey = "\x00__no_group__"

// NewAggregator constructs an Aggregate. groupField may be nil for a
// whole-table aggregate. Fails at construction if aggOp is anything but
// CountAgg and aggField's type is StringType, since only COUNT is defined
// over strings.
func NewAggregator(aggField Expr, aggAlias string, aggOp AggType, groupField Expr, child Operator) (*Aggregate, error) {
	if aggOp != CountAgg && aggField.GetExprType().Ftype == StringType {
		return nil, NewError(UnsupportedError, "only COUNT is supported over a STRING field")
	}

	fields := []FieldType{}
	if groupField != nil {
		fields = append(fields, groupField.GetExprType())
	}
	fields = append(fields, FieldType{Fname: aggAlias, Ftype: IntType})

	return &Aggregate{
		child:      child,
		aggField:   aggField,
		aggOp:      aggOp,
		aggAlias:   aggAlias,
		groupField: groupField,
		desc:       &TupleDesc{Fields: fields},
	}, nil
}

func (a *Aggregate) newState() AggState {
	var s AggState
	switch a.aggOp {
	case MinAgg:
		s = &MinAggState{}
	case MaxAgg:
		s = &MaxAggState{}
	case SumAgg:
		s = &SumAggState{}
	case AvgAgg:
		s = &AvgAggState{}
	default:
		s = &CountAggState{}
	}
	_ = s.Init(a.aggAlias, a.aggField)
	return s
}

// Descriptor implements Operator.
func (a *Aggregate) Descriptor() *TupleDesc { return a.desc }

// SetChildren implements Operator.
func (a *Aggregate) SetChildren(children []Operator) {
	a.child = children[0]
}

// Open implements Operator: drains the child once, building one AggState
// per distinct group-by value.
func (a *Aggregate) Open(tid TransactionID) error {
	if err := a.child.Open(tid); err != nil {
		return err
	}

	order := []string{}
	groupVals := map[string]DBValue{}
	states := map[string]AggState{}

	for {
		has, err := a.child.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		t, err := a.child.Next()
		if err != nil {
			return err
		}

		key := noGroupKey
		var gv DBValue
		if a.groupField != nil {
			gv, err = a.groupField.EvalExpr(t)
			if err != nil {
				return err
			}
			key = (&Tuple{Desc: TupleDesc{Fields: []FieldType{a.groupField.GetExprType()}}, Fields: []DBValue{gv}}).tupleKey()
		}

		state, ok := states[key]
		if !ok {
			state = a.newState()
			states[key] = state
			groupVals[key] = gv
			order = append(order, key)
		}
		state.AddTuple(t)
	}

	results := make([]*Tuple, 0, len(order))
	for _, key := range order {
		final := states[key].Finalize()
		if a.groupField == nil {
			results = append(results, final)
			continue
		}
		merged := &Tuple{
			Desc:   *a.desc,
			Fields: append([]DBValue{groupVals[key]}, final.Fields...),
		}
		results = append(results, merged)
	}

	a.results = results
	a.pos = 0
	return nil
}

// HasNext implements Operator.
func (a *Aggregate) HasNext() (bool, error) {
	return a.pos < len(a.results), nil
}

// Next implements Operator.
func (a *Aggregate) Next() (*Tuple, error) {
	if a.pos >= len(a.results) {
		return nil, NewError(NoSuchElementError, "aggregate exhausted")
	}
	t := a.results[a.pos]
	a.pos++
	return t, nil
}

// Rewind implements Operator: replays the already-computed result set
// without re-consuming the child.
func (a *Aggregate) Rewind() error {
	a.pos = 0
	return nil
}

// Close implements Operator.
func (a *Aggregate) Close() error {
	a.results = nil
	a.pos = 0
	return a.child.Close()
}
