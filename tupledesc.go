package relstore

import "fmt"

// TupleDesc is the schema of a tuple: an ordered, non-empty sequence of
// (type, optional name) items. Two TupleDescs are equal iff they have the
// same length and pairwise-equal types; field names never affect equality.
// A TupleDesc is immutable after construction; setTableAlias returns a new
// TupleDesc with its own backing slice and leaves the original unchanged.
type TupleDesc struct {
	Fields []FieldType
}

// NewTupleDesc builds a TupleDesc, failing if fields is empty.
func NewTupleDesc(fields []FieldType) (*TupleDesc, error) {
	if len(fields) == 0 {
		return nil, NewError(IncompatibleTypesError, "a TupleDesc must have at least one field")
	}
	cp := make([]FieldType, len(fields))
	copy(cp, fields)
	return &TupleDesc{Fields: cp}, nil
}

// Size returns the number of bytes a tuple of this schema occupies on disk:
// the sum of each field's byteLen.
func (td *TupleDesc) Size() int {
	size := 0
	for _, f := range td.Fields {
		size += f.byteLen()
	}
	return size
}

// Equals compares two TupleDescs for equality: same length, pairwise equal
// types. Field names are not considered.
func (td *TupleDesc) Equals(other *TupleDesc) bool {
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i := range td.Fields {
		if td.Fields[i].Ftype != other.Fields[i].Ftype {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of td; mutating the copy's Fields slice
// never affects td.
func (td *TupleDesc) Copy() *TupleDesc {
	cp := make([]FieldType, len(td.Fields))
	copy(cp, td.Fields)
	return &TupleDesc{Fields: cp}
}

// setTableAlias returns a new TupleDesc with every field's TableQualifier
// set to alias; used by SeqScan to prefix a table's field names.
func (td *TupleDesc) setTableAlias(alias string) *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	for i := range fields {
		fields[i].TableQualifier = alias
	}
	return &TupleDesc{Fields: fields}
}

// Merge returns a new TupleDesc whose fields are td's fields followed by
// other's fields; field order is preserved on both sides.
func (td *TupleDesc) Merge(other *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td.Fields)+len(other.Fields))
	fields = append(fields, td.Fields...)
	fields = append(fields, other.Fields...)
	return &TupleDesc{Fields: fields}
}

// fieldNameToIndex finds the index of the field named name, preferring one
// qualified with tableQualifier when given. It matches by value equality on
// the name string (not identity), per the documented resolution of the
// looser match some upstream tests rely on. A lookup for the name "" never
// matches an unnamed field: unnamed fields are simply never matched by
// name.
func (td *TupleDesc) fieldNameToIndex(tableQualifier, name string) (int, error) {
	if name == "" {
		return -1, NewError(IncompatibleTypesError, "field name must not be empty")
	}
	best := -1
	for i, f := range td.Fields {
		if f.Fname == "" || f.Fname != name {
			continue
		}
		if tableQualifier == "" {
			if best != -1 {
				return -1, NewError(AmbiguousNameError, fmt.Sprintf("field name %q is ambiguous", name))
			}
			best = i
			continue
		}
		if f.TableQualifier == tableQualifier {
			return i, nil
		}
		if best == -1 {
			best = i
		}
	}
	if best == -1 {
		return -1, NewError(IncompatibleTypesError, fmt.Sprintf("field %s.%s not found", tableQualifier, name))
	}
	return best, nil
}

// HeaderString renders a table header for tuples of this schema: comma
// separated field names ("table.field" when qualified) when aligned is
// false, or a fixed-width columnar header when true. Used by tests and
// debugging output only; not part of the operator contract.
func (td *TupleDesc) HeaderString(aligned bool) string {
	out := ""
	for i, f := range td.Fields {
		name := f.Fname
		if f.TableQualifier != "" {
			name = f.TableQualifier + "." + name
		}
		if aligned {
			out += " " + fmtCol(name, len(td.Fields))
		} else {
			if i > 0 {
				out += ","
			}
			out += name
		}
	}
	return out
}

const headerWidth = 120

func fmtCol(v string, ncols int) string {
	if ncols == 0 {
		ncols = 1
	}
	colWidth := headerWidth / ncols
	remaining := colWidth - (len(v) + 3)
	if remaining <= 0 {
		if len(v) > colWidth-4 && colWidth > 4 {
			v = v[:colWidth-4]
		}
		return " " + v + " |"
	}
	right := remaining / 2
	left := remaining - right
	pad := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = ' '
		}
		return string(b)
	}
	return pad(left) + v + pad(right) + " |"
}
