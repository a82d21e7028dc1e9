package relstore

import "fmt"

// DBType is the closed set of primitive field types relstore supports.
type DBType int

const (
	IntType DBType = iota
	StringType
	// UnknownType is a placeholder outside the supported set; no value or
	// schema in this package has it, and String reports it as "unknown".
	UnknownType
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// intFieldLen is the fixed serialized length of an INT field: a 4-byte
// big-endian signed integer.
const intFieldLen = 4

// DefaultStringMaxLen is the maximum content length, in bytes, used for a
// STRING column when no more specific length is supplied. The catalog text
// format (see Catalog.LoadSchema) does not carry a per-field length token,
// so every STRING column loaded from a schema file gets this length; the Go
// API (FieldType literals built directly in code) can set a different
// StringMaxLen per field.
const DefaultStringMaxLen = 128

// FieldType describes one item of a TupleDesc: its type, optional name, and
// optional table qualifier (set by SeqScan's alias; Project's output naming
// sets only Fname). StringMaxLen is meaningful only when Ftype == StringType and
// fixes that field's maximum content length; combined with the 4-byte
// length prefix it determines the field's serialized size.
type FieldType struct {
	Fname          string
	TableQualifier string
	Ftype          DBType
	StringMaxLen   int
}

// byteLen returns the number of bytes this field occupies on disk.
func (ft FieldType) byteLen() int {
	if ft.Ftype == StringType {
		maxLen := ft.StringMaxLen
		if maxLen == 0 {
			maxLen = DefaultStringMaxLen
		}
		return 4 + maxLen
	}
	return intFieldLen
}

// BoolOp is a comparison operator used by scalar and join predicates and by
// Filter/Join/OrderBy.
type BoolOp int

const (
	OpEq BoolOp = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

func (op BoolOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	}
	return "?"
}

// DBValue is a typed field value: an IntField or a StringField. Ordering is
// total within a type via EvalPred.
type DBValue interface {
	// EvalPred evaluates "this op other" and reports the result. Comparing
	// values of different concrete types always returns false.
	EvalPred(other DBValue, op BoolOp) bool
	fieldType() DBType
}

// IntField is the INT value of a field: a 4-byte signed integer.
type IntField struct {
	Value int32
}

func (f IntField) fieldType() DBType { return IntType }

func (f IntField) EvalPred(other DBValue, op BoolOp) bool {
	o, ok := other.(IntField)
	if !ok {
		return false
	}
	return evalOrdered(f.Value, o.Value, op)
}

func (f IntField) String() string {
	return fmt.Sprintf("%d", f.Value)
}

// StringField is the STRING value of a field. Its serialized form is
// truncated (never stored with length greater than the column's
// StringMaxLen); comparisons use normal Go string ordering.
type StringField struct {
	Value string
}

func (f StringField) fieldType() DBType { return StringType }

func (f StringField) EvalPred(other DBValue, op BoolOp) bool {
	o, ok := other.(StringField)
	if !ok {
		return false
	}
	return evalOrdered(f.Value, o.Value, op)
}

func (f StringField) String() string {
	return f.Value
}

func evalOrdered[T int32 | string](a, b T, op BoolOp) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	}
	return false
}
