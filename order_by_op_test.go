package relstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderBySortsAscending(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_orderby_asc.dat", "people", [][2]interface{}{
		{"sam", 30}, {"annie", 17}, {"josie", 20},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	ob, err := NewOrderBy([]Expr{FieldExpr{Field: ageField()}}, scan, []bool{true})
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, ob.Open(tid))
	rows := drain(t, ob)
	require.NoError(t, ob.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 3)
	require.Equal(t, int32(17), rows[0].Fields[1].(IntField).Value)
	require.Equal(t, int32(20), rows[1].Fields[1].(IntField).Value)
	require.Equal(t, int32(30), rows[2].Fields[1].(IntField).Value)
}

func TestOrderByDescending(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_orderby_desc.dat", "people", [][2]interface{}{
		{"sam", 30}, {"annie", 17}, {"josie", 20},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	ob, err := NewOrderBy([]Expr{FieldExpr{Field: ageField()}}, scan, []bool{false})
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, ob.Open(tid))
	rows := drain(t, ob)
	require.NoError(t, ob.Close())
	bp.transactionComplete(tid, true)

	require.Equal(t, int32(30), rows[0].Fields[1].(IntField).Value)
	require.Equal(t, int32(17), rows[2].Fields[1].(IntField).Value)
}

func TestOrderByRewindReplaysWithoutReSort(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_orderby_rewind.dat", "people", [][2]interface{}{
		{"b", 2}, {"a", 1},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)
	ob, err := NewOrderBy([]Expr{FieldExpr{Field: ageField()}}, scan, []bool{true})
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, ob.Open(tid))
	first := drain(t, ob)
	require.NoError(t, ob.Rewind())
	second := drain(t, ob)
	require.NoError(t, ob.Close())
	bp.transactionComplete(tid, true)

	require.Equal(t, first, second)
}
