package relstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ageField() FieldType  { return FieldType{Fname: "age", Ftype: IntType} }
func nameField() FieldType { return FieldType{Fname: "name", Ftype: StringType} }

func TestFilterKeepsOnlyMatchingRows(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_filter.dat", "people", [][2]interface{}{
		{"josie", 20}, {"annie", 17}, {"sam", 30},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	filter, err := NewFilter(FieldExpr{Field: ageField()}, OpGe, ConstExpr{Value: IntField{20}, Ftype: IntType}, scan)
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, filter.Open(tid))
	rows := drain(t, filter)
	require.NoError(t, filter.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 2)
	for _, r := range rows {
		require.GreaterOrEqual(t, r.Fields[1].(IntField).Value, int32(20))
	}
}

func TestFilterRewindReevaluatesChild(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_filter_rewind.dat", "people", [][2]interface{}{
		{"josie", 20}, {"annie", 17},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)
	filter, err := NewFilter(FieldExpr{Field: nameField()}, OpEq, ConstExpr{Value: StringField{"josie"}, Ftype: StringType}, scan)
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, filter.Open(tid))
	require.Len(t, drain(t, filter), 1)
	require.NoError(t, filter.Rewind())
	require.Len(t, drain(t, filter), 1)
	require.NoError(t, filter.Close())
	bp.transactionComplete(tid, true)
}

func TestFilterExhaustedNextErrors(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_filter_exhausted.dat", "people", [][2]interface{}{
		{"josie", 20},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)
	filter, err := NewFilter(FieldExpr{Field: ageField()}, OpGt, ConstExpr{Value: IntField{1000}, Ftype: IntType}, scan)
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, filter.Open(tid))
	has, err := filter.HasNext()
	require.NoError(t, err)
	require.False(t, has)
	_, err = filter.Next()
	require.Error(t, err)
	require.NoError(t, filter.Close())
	bp.transactionComplete(tid, true)
}
