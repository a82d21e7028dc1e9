package relstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHeapFile(t *testing.T, path string) (*HeapFile, *BufferPool, *Catalog) {
	os.Remove(path)
	t.Cleanup(func() { os.Remove(path) })

	bp, err := NewBufferPool(64)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf, err := NewHeapFile(path, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf, "people", "")
	return hf, bp, cat
}

func TestHeapFileStartsEmpty(t *testing.T) {
	hf, _, _ := newTestHeapFile(t, "test_heapfile_empty.dat")
	require.Equal(t, 0, hf.NumPages())
}

func TestHeapFileInsertAllocatesPageOnDemand(t *testing.T) {
	hf, bp, _ := newTestHeapFile(t, "test_heapfile_insert.dat")
	tid := NewTID()

	_, err := hf.InsertTuple(tid, testTuple("josie", 20))
	require.NoError(t, err)
	require.Equal(t, 1, hf.NumPages())

	bp.transactionComplete(tid, true)
}

func TestHeapFileInsertFillsPagesBeforeAllocating(t *testing.T) {
	hf, bp, _ := newTestHeapFile(t, "test_heapfile_fill.dat")
	tid := NewTID()

	page := numSlotsForTupleDesc(testTupleDesc(), PageSize)
	for i := 0; i < page; i++ {
		_, err := hf.InsertTuple(tid, testTuple("x", int32(i)))
		require.NoError(t, err)
	}
	require.Equal(t, 1, hf.NumPages())

	_, err := hf.InsertTuple(tid, testTuple("overflow", 0))
	require.NoError(t, err)
	require.Equal(t, 2, hf.NumPages())

	bp.transactionComplete(tid, true)
}

func TestHeapFileIteratorYieldsInsertedTuples(t *testing.T) {
	hf, bp, _ := newTestHeapFile(t, "test_heapfile_iter.dat")
	tid := NewTID()

	names := []string{"josie", "annie", "sam"}
	for i, n := range names {
		_, err := hf.InsertTuple(tid, testTuple(n, int32(i)))
		require.NoError(t, err)
	}
	bp.transactionComplete(tid, true)

	readTid := NewTID()
	iter, err := hf.Iterator(readTid)
	require.NoError(t, err)
	require.NoError(t, iter.Open())

	var seen []string
	for {
		has, err := iter.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := iter.Next()
		require.NoError(t, err)
		seen = append(seen, tup.Fields[0].(StringField).Value)
	}
	require.ElementsMatch(t, names, seen)
	bp.transactionComplete(readTid, true)
}

func TestHeapFileDeleteClearsSlot(t *testing.T) {
	hf, bp, _ := newTestHeapFile(t, "test_heapfile_delete.dat")
	tid := NewTID()

	tup := testTuple("josie", 20)
	_, err := hf.InsertTuple(tid, tup)
	require.NoError(t, err)

	_, err = hf.DeleteTuple(tid, tup)
	require.NoError(t, err)
	bp.transactionComplete(tid, true)

	readTid := NewTID()
	iter, err := hf.Iterator(readTid)
	require.NoError(t, err)
	require.NoError(t, iter.Open())
	has, err := iter.HasNext()
	require.NoError(t, err)
	require.False(t, has)
	bp.transactionComplete(readTid, true)
}
