package relstore

// Expr evaluates to a DBValue given a tuple. Filter, Join, OrderBy, and
// Aggregate all operate on arbitrary Exprs rather than bare field indexes,
// so a constant or a future computed expression can stand in for a simple
// field reference.
type Expr interface {
	// EvalExpr evaluates this expression against t.
	EvalExpr(t *Tuple) (DBValue, error)
	// GetExprType reports the FieldType this expression evaluates to,
	// without needing a tuple (used to build operator output schemas).
	GetExprType() FieldType
}

// FieldExpr extracts a named field from a tuple.
type FieldExpr struct {
	Field FieldType
}

func (e FieldExpr) EvalExpr(t *Tuple) (DBValue, error) {
	idx, err := t.Desc.fieldNameToIndex(e.Field.TableQualifier, e.Field.Fname)
	if err != nil {
		return nil, err
	}
	return t.Fields[idx], nil
}

func (e FieldExpr) GetExprType() FieldType {
	return e.Field
}

// ConstExpr evaluates to a fixed value regardless of the supplied tuple;
// EvalExpr accepts a nil tuple.
type ConstExpr struct {
	Value DBValue
	Ftype FieldType
}

func (e ConstExpr) EvalExpr(t *Tuple) (DBValue, error) {
	return e.Value, nil
}

func (e ConstExpr) GetExprType() FieldType {
	return e.Ftype
}
