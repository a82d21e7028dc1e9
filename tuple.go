package relstore

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// RecordID is a tuple's physical location: the page it lives on and its
// slot index within that page's header bitmap. Two RecordIDs are equal iff
// both the PageID and SlotIndex match.
type RecordID struct {
	PageID    PageID
	SlotIndex int
}

// Tuple is a row value together with the schema it was read (or will be
// written) under, and the physical location it came from, if any. Field
// values may be absent (nil) until set by SetField; swapping the schema via
// SetDesc clears any existing field values, since they would no longer
// correspond to the new schema's types.
type Tuple struct {
	Desc   TupleDesc
	Fields []DBValue
	Rid    *RecordID
}

// NewTuple allocates a Tuple for the given schema with all fields absent.
func NewTuple(desc TupleDesc) *Tuple {
	return &Tuple{Desc: desc, Fields: make([]DBValue, len(desc.Fields))}
}

// SetField sets the value of the field at index i.
func (t *Tuple) SetField(i int, v DBValue) error {
	if i < 0 || i >= len(t.Fields) {
		return NewError(IncompatibleTypesError, "field index out of range")
	}
	t.Fields[i] = v
	return nil
}

// SetDesc swaps t's schema, clearing all field values (they no longer
// correspond to the new schema).
func (t *Tuple) SetDesc(desc TupleDesc) {
	t.Desc = desc
	t.Fields = make([]DBValue, len(desc.Fields))
	t.Rid = nil
}

// Equals compares two tuples: their TupleDescs must be Equals, and every
// field must compare equal.
func (t *Tuple) Equals(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.Desc.Equals(&other.Desc) {
		return false
	}
	if len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i] == nil || other.Fields[i] == nil {
			if t.Fields[i] != other.Fields[i] {
				return false
			}
			continue
		}
		if !t.Fields[i].EvalPred(other.Fields[i], OpEq) {
			return false
		}
	}
	return true
}

// joinTuples returns a new tuple whose schema and fields are t1's followed
// by t2's. A nil t1 or t2 is treated as the identity for this operation.
func joinTuples(t1, t2 *Tuple) *Tuple {
	if t1 == nil {
		return t2
	}
	if t2 == nil {
		return t1
	}
	return &Tuple{
		Desc:   *t1.Desc.Merge(&t2.Desc),
		Fields: append(append([]DBValue{}, t1.Fields...), t2.Fields...),
	}
}

// project returns a new tuple containing only the named fields, in the
// order requested. A field is matched preferring one whose TableQualifier
// matches, falling back to a name-only match.
func (t *Tuple) project(fields []FieldType) (*Tuple, error) {
	out := &Tuple{Desc: TupleDesc{}}
	for _, want := range fields {
		idx, err := t.Desc.fieldNameToIndex(want.TableQualifier, want.Fname)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, t.Fields[idx])
		out.Desc.Fields = append(out.Desc.Fields, t.Desc.Fields[idx])
	}
	return out, nil
}

// orderByState is the three-way result of comparing two tuples on a single
// expression.
type orderByState int

const (
	OrderedLessThan orderByState = iota
	OrderedEqual
	OrderedGreaterThan
)

// compareField evaluates expr against t and other and returns their
// relative order.
func (t *Tuple) compareField(other *Tuple, expr Expr) (orderByState, error) {
	a, err := expr.EvalExpr(t)
	if err != nil {
		return OrderedEqual, err
	}
	b, err := expr.EvalExpr(other)
	if err != nil {
		return OrderedEqual, err
	}
	switch {
	case a.EvalPred(b, OpLt):
		return OrderedLessThan, nil
	case a.EvalPred(b, OpGt):
		return OrderedGreaterThan, nil
	default:
		return OrderedEqual, nil
	}
}

// writeStringField serializes a STRING field as a 4-byte big-endian length
// prefix followed by exactly maxLen bytes of content (truncated if needed,
// zero-padded past the meaningful length for determinism, per the spec's
// resolution of the padding bytes' unspecified values).
func writeStringField(buf *bytes.Buffer, f StringField, maxLen int) error {
	content := []byte(f.Value)
	if len(content) > maxLen {
		content = content[:maxLen]
	}
	if err := binary.Write(buf, binary.BigEndian, int32(len(content))); err != nil {
		return err
	}
	padded := make([]byte, maxLen)
	copy(padded, content)
	_, err := buf.Write(padded)
	return err
}

func readStringField(buf *bytes.Buffer, maxLen int) (StringField, error) {
	var length int32
	if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
		return StringField{}, err
	}
	raw := make([]byte, maxLen)
	if _, err := buf.Read(raw); err != nil {
		return StringField{}, err
	}
	if int(length) < 0 || int(length) > maxLen {
		length = int32(maxLen)
	}
	return StringField{Value: string(raw[:length])}, nil
}

func writeIntField(buf *bytes.Buffer, f IntField) error {
	return binary.Write(buf, binary.BigEndian, f.Value)
}

func readIntField(buf *bytes.Buffer) (IntField, error) {
	var v int32
	if err := binary.Read(buf, binary.BigEndian, &v); err != nil {
		return IntField{}, err
	}
	return IntField{Value: v}, nil
}

// writeTo serializes t's fields, in schema order, into buf using each
// field's type-defined encoding. t must have exactly len(desc.Fields)
// fields, all set.
func (t *Tuple) writeTo(buf *bytes.Buffer, desc *TupleDesc) error {
	for i, ft := range desc.Fields {
		switch v := t.Fields[i].(type) {
		case IntField:
			if err := writeIntField(buf, v); err != nil {
				return err
			}
		case StringField:
			maxLen := ft.StringMaxLen
			if maxLen == 0 {
				maxLen = DefaultStringMaxLen
			}
			if err := writeStringField(buf, v, maxLen); err != nil {
				return err
			}
		default:
			return NewError(TypeMismatchError, "tuple field is absent or of unknown type")
		}
	}
	return nil
}

// readTupleFrom deserializes a tuple of the given schema from buf.
func readTupleFrom(buf *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	t := &Tuple{Desc: *desc, Fields: make([]DBValue, len(desc.Fields))}
	for i, ft := range desc.Fields {
		switch ft.Ftype {
		case IntType:
			f, err := readIntField(buf)
			if err != nil {
				return nil, err
			}
			t.Fields[i] = f
		case StringType:
			maxLen := ft.StringMaxLen
			if maxLen == 0 {
				maxLen = DefaultStringMaxLen
			}
			f, err := readStringField(buf, maxLen)
			if err != nil {
				return nil, err
			}
			t.Fields[i] = f
		}
	}
	return t, nil
}

// tupleKey returns a value suitable as a map key that uniquely identifies
// t's serialized contents; used by Project's distinct mode and by
// Aggregate's group-by bucketing.
func (t *Tuple) tupleKey() string {
	var buf bytes.Buffer
	_ = t.writeTo(&buf, &t.Desc)
	return buf.String()
}

// PrettyPrintString renders t's field values for debugging/test output.
func (t *Tuple) PrettyPrintString(aligned bool) string {
	var parts []string
	for _, f := range t.Fields {
		if f == nil {
			parts = append(parts, "")
			continue
		}
		switch v := f.(type) {
		case IntField:
			parts = append(parts, v.String())
		case StringField:
			parts = append(parts, v.String())
		}
	}
	if aligned {
		out := ""
		for _, p := range parts {
			out += " " + fmtCol(p, len(parts))
		}
		return out
	}
	return strings.Join(parts, ",")
}
