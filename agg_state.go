package relstore

// AggState is one running aggregate computation: COUNT, SUM, AVG, MIN, or
// MAX over a single expression.
type AggState interface {
	// Init prepares a fresh state that will output a field named alias,
	// aggregating the values expr evaluates to.
	Init(alias string, expr Expr) error
	// Copy returns an independent copy of this state, for starting a new
	// group-by bucket from a template.
	Copy() AggState
	// AddTuple folds t into the running aggregate.
	AddTuple(t *Tuple)
	// Finalize returns the one-field result tuple.
	Finalize() *Tuple
	// GetTupleDesc reports the schema Finalize's tuple will have.
	GetTupleDesc() *TupleDesc
}

// CountAggState implements COUNT, the only aggregate legal over a STRING
// field.
type CountAggState struct {
	alias string
	expr  Expr
	count int32
}

func (a *CountAggState) Copy() AggState {
	return &CountAggState{alias: a.alias, expr: a.expr, count: a.count}
}

func (a *CountAggState) Init(alias string, expr Expr) error {
	a.alias = alias
	a.expr = expr
	a.count = 0
	return nil
}

func (a *CountAggState) AddTuple(t *Tuple) {
	a.count++
}

func (a *CountAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *CountAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{a.count}}}
}

// SumAggState implements SUM over an INT field.
type SumAggState struct {
	alias string
	expr  Expr
	sum   int32
}

func (a *SumAggState) Copy() AggState {
	return &SumAggState{alias: a.alias, expr: a.expr, sum: a.sum}
}

func (a *SumAggState) Init(alias string, expr Expr) error {
	a.alias = alias
	a.expr = expr
	a.sum = 0
	return nil
}

func (a *SumAggState) AddTuple(t *Tuple) {
	v, err := a.expr.EvalExpr(t)
	if err != nil {
		return
	}
	if iv, ok := v.(IntField); ok {
		a.sum += iv.Value
	}
}

func (a *SumAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *SumAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{a.sum}}}
}

// AvgAggState implements AVG over an INT field: sum and count are tracked
// separately and divided (integer division) only at Finalize.
type AvgAggState struct {
	alias string
	expr  Expr
	sum   int32
	count int32
}

func (a *AvgAggState) Copy() AggState {
	return &AvgAggState{alias: a.alias, expr: a.expr, sum: a.sum, count: a.count}
}

func (a *AvgAggState) Init(alias string, expr Expr) error {
	a.alias = alias
	a.expr = expr
	a.sum = 0
	a.count = 0
	return nil
}

func (a *AvgAggState) AddTuple(t *Tuple) {
	v, err := a.expr.EvalExpr(t)
	if err != nil {
		return
	}
	if iv, ok := v.(IntField); ok {
		a.sum += iv.Value
		a.count++
	}
}

func (a *AvgAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

// Finalize divides sum by count. Always called after at least one AddTuple
// for this bucket (a group-by bucket is only created on its first tuple),
// so count is never zero here.
func (a *AvgAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{a.sum / a.count}}}
}

// MaxAggState implements MAX over an INT or STRING field.
type MaxAggState struct {
	alias   string
	expr    Expr
	maximum DBValue
}

func (a *MaxAggState) Copy() AggState {
	return &MaxAggState{alias: a.alias, expr: a.expr, maximum: a.maximum}
}

func (a *MaxAggState) Init(alias string, expr Expr) error {
	a.alias = alias
	a.expr = expr
	a.maximum = nil
	return nil
}

func (a *MaxAggState) AddTuple(t *Tuple) {
	v, err := a.expr.EvalExpr(t)
	if err != nil {
		return
	}
	if a.maximum == nil || v.EvalPred(a.maximum, OpGt) {
		a.maximum = v
	}
}

func (a *MaxAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: a.expr.GetExprType().Ftype}}}
}

func (a *MaxAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{a.maximum}}
}

// MinAggState implements MIN over an INT or STRING field.
type MinAggState struct {
	alias   string
	expr    Expr
	minimum DBValue
}

func (a *MinAggState) Copy() AggState {
	return &MinAggState{alias: a.alias, expr: a.expr, minimum: a.minimum}
}

func (a *MinAggState) Init(alias string, expr Expr) error {
	a.alias = alias
	a.expr = expr
	a.minimum = nil
	return nil
}

func (a *MinAggState) AddTuple(t *Tuple) {
	v, err := a.expr.EvalExpr(t)
	if err != nil {
		return
	}
	if a.minimum == nil || v.EvalPred(a.minimum, OpLt) {
		a.minimum = v
	}
}

func (a *MinAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: a.expr.GetExprType().Ftype}}}
}

func (a *MinAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{a.minimum}}
}
