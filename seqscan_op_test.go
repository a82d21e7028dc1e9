package relstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// newOpTestTable builds a fresh BufferPool/Catalog/HeapFile trio at path,
// registers it as tableName, inserts one tuple per (name, age) pair under a
// committed setup transaction, and returns everything a test needs to build
// an operator tree over it.
func newOpTestTable(t *testing.T, path string, tableName string, rows [][2]interface{}) (*BufferPool, *Catalog, int64) {
	os.Remove(path)
	t.Cleanup(func() { os.Remove(path) })

	bp, err := NewBufferPool(64)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf, err := NewHeapFile(path, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf, tableName, "")

	tid := NewTID()
	for _, row := range rows {
		tup := testTuple(row[0].(string), int32(row[1].(int)))
		_, err := hf.InsertTuple(tid, tup)
		require.NoError(t, err)
	}
	bp.transactionComplete(tid, true)

	return bp, cat, hf.ID()
}

func drain(t *testing.T, op Operator) []*Tuple {
	var out []*Tuple
	for {
		has, err := op.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := op.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}

func TestSeqScanYieldsEveryRow(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_seqscan.dat", "people", [][2]interface{}{
		{"josie", 20}, {"annie", 17}, {"sam", 30},
	})

	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)

	tid := NewTID()
	require.NoError(t, scan.Open(tid))
	rows := drain(t, scan)
	require.NoError(t, scan.Close())
	bp.transactionComplete(tid, true)

	require.Len(t, rows, 3)
}

func TestSeqScanAliasQualifiesFields(t *testing.T) {
	_, cat, tableId := newOpTestTable(t, "test_seqscan_alias.dat", "people", [][2]interface{}{
		{"josie", 20},
	})

	scan, err := NewSeqScan(cat, tableId, "p")
	require.NoError(t, err)
	require.Equal(t, "p", scan.Descriptor().Fields[0].TableQualifier)
}

func TestSeqScanRewindReplaysFromStart(t *testing.T) {
	bp, cat, tableId := newOpTestTable(t, "test_seqscan_rewind.dat", "people", [][2]interface{}{
		{"josie", 20}, {"annie", 17},
	})

	scan, err := NewSeqScan(cat, tableId, "")
	require.NoError(t, err)
	tid := NewTID()
	require.NoError(t, scan.Open(tid))

	first := drain(t, scan)
	require.Len(t, first, 2)

	require.NoError(t, scan.Rewind())
	second := drain(t, scan)
	require.Len(t, second, 2)

	require.NoError(t, scan.Close())
	bp.transactionComplete(tid, true)
}
