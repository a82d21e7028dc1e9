package relstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLimitCapsOutput(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_limit.dat", "people", [][2]interface{}{
		{"a", 1}, {"b", 2}, {"c", 3},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	lim := NewLimitOp(ConstExpr{Value: IntField{2}, Ftype: IntType}, scan)

	tid := NewTID()
	require.NoError(t, lim.Open(tid))
	rows := drain(t, lim)
	require.NoError(t, lim.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 2)
}

func TestLimitLargerThanInputYieldsAll(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_limit_large.dat", "people", [][2]interface{}{
		{"a", 1},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	lim := NewLimitOp(ConstExpr{Value: IntField{100}, Ftype: IntType}, scan)

	tid := NewTID()
	require.NoError(t, lim.Open(tid))
	rows := drain(t, lim)
	require.NoError(t, lim.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 1)
}

func TestLimitRewindResetsCount(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_limit_rewind.dat", "people", [][2]interface{}{
		{"a", 1}, {"b", 2}, {"c", 3},
	})
	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)
	lim := NewLimitOp(ConstExpr{Value: IntField{1}, Ftype: IntType}, scan)

	tid := NewTID()
	require.NoError(t, lim.Open(tid))
	require.Len(t, drain(t, lim), 1)
	require.NoError(t, lim.Rewind())
	require.Len(t, drain(t, lim), 1)
	require.NoError(t, lim.Close())
	bp.transactionComplete(tid, true)
}
