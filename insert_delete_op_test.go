package relstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertOpCopiesRowsAndReportsCount(t *testing.T) {
	bp, cat, sourceId := newOpTestTable(t, "test_insert_source.dat", "source", [][2]interface{}{
		{"a", 1}, {"b", 2},
	})

	targetHf, err := NewHeapFile("test_insert_target.dat", testTupleDesc(), bp)
	require.NoError(t, err)
	t.Cleanup(func() { removeIfExists("test_insert_target.dat") })
	cat.addTable(targetHf, "target", "")

	scan, err := NewSeqScan(cat, sourceId, "")
	require.NoError(t, err)
	ins := NewInsertOp(bp, targetHf.ID(), scan)

	tid := NewTID()
	require.NoError(t, ins.Open(tid))
	rows := drain(t, ins)
	require.NoError(t, ins.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 1)
	require.Equal(t, int32(2), rows[0].Fields[0].(IntField).Value)
	require.Equal(t, 1, targetHf.NumPages())
}

func TestInsertOpSecondNextReportsExhaustion(t *testing.T) {
	_, cat, sourceId := newOpTestTable(t, "test_insert_exhaust.dat", "source", [][2]interface{}{
		{"a", 1},
	})
	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	bp.SetCatalog(cat)
	targetHf, err := NewHeapFile("test_insert_exhaust_target.dat", testTupleDesc(), bp)
	require.NoError(t, err)
	t.Cleanup(func() { removeIfExists("test_insert_exhaust_target.dat") })
	cat.addTable(targetHf, "target", "")

	scan, err := NewSeqScan(cat, sourceId, "")
	require.NoError(t, err)
	ins := NewInsertOp(bp, targetHf.ID(), scan)

	tid := NewTID()
	require.NoError(t, ins.Open(tid))
	_, err = ins.Next()
	require.NoError(t, err)
	_, err = ins.Next()
	require.Error(t, err)
	require.NoError(t, ins.Close())
	bp.transactionComplete(tid, true)
}

func TestDeleteOpRemovesRowsAndReportsCount(t *testing.T) {
	path := "test_delete.dat"
	removeIfExists(path)
	t.Cleanup(func() { removeIfExists(path) })

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)
	hf, err := NewHeapFile(path, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf, "people", "")

	setup := NewTID()
	_, err = hf.InsertTuple(setup, testTuple("josie", 20))
	require.NoError(t, err)
	_, err = hf.InsertTuple(setup, testTuple("annie", 17))
	require.NoError(t, err)
	bp.transactionComplete(setup, true)

	scan, err := NewSeqScan(cat, hf.ID(), "")
	require.NoError(t, err)
	filter, err := NewFilter(FieldExpr{Field: ageField()}, OpLt, ConstExpr{Value: IntField{18}, Ftype: IntType}, scan)
	require.NoError(t, err)
	del := NewDeleteOp(bp, filter)

	tid := NewTID()
	require.NoError(t, del.Open(tid))
	rows := drain(t, del)
	require.NoError(t, del.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 1)
	require.Equal(t, int32(1), rows[0].Fields[0].(IntField).Value)

	readTid := NewTID()
	iter, err := hf.Iterator(readTid)
	require.NoError(t, err)
	require.NoError(t, iter.Open())
	var remaining []string
	for {
		has, err := iter.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := iter.Next()
		require.NoError(t, err)
		remaining = append(remaining, tup.Fields[0].(StringField).Value)
	}
	bp.transactionComplete(readTid, true)
	require.Equal(t, []string{"josie"}, remaining)
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}
