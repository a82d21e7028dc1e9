package relstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogAddTableAndLookup(t *testing.T) {
	path := "test_catalog_add.dat"
	os.Remove(path)
	defer os.Remove(path)

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf, err := NewHeapFile(path, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf, "people", "name")

	id, err := cat.getTableId("people")
	require.NoError(t, err)
	require.Equal(t, hf.ID(), id)

	file, err := cat.getDatabaseFile(id)
	require.NoError(t, err)
	require.Equal(t, hf, file)

	td, err := cat.getTupleDesc(id)
	require.NoError(t, err)
	require.Equal(t, hf.Descriptor(), td)

	pkey, err := cat.getPrimaryKey(id)
	require.NoError(t, err)
	require.Equal(t, "name", pkey)

	name, err := cat.getTableName(id)
	require.NoError(t, err)
	require.Equal(t, "people", name)
}

func TestCatalogNameCollisionOverwrites(t *testing.T) {
	path1 := "test_catalog_collide1.dat"
	path2 := "test_catalog_collide2.dat"
	os.Remove(path1)
	os.Remove(path2)
	defer os.Remove(path1)
	defer os.Remove(path2)

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf1, err := NewHeapFile(path1, testTupleDesc(), bp)
	require.NoError(t, err)
	hf2, err := NewHeapFile(path2, testTupleDesc(), bp)
	require.NoError(t, err)

	cat.addTable(hf1, "people", "")
	cat.addTable(hf2, "people", "")

	id, err := cat.getTableId("people")
	require.NoError(t, err)
	require.Equal(t, hf2.ID(), id)

	// hf1's id is still independently resolvable; only the name rebound.
	file, err := cat.getDatabaseFile(hf1.ID())
	require.NoError(t, err)
	require.Equal(t, hf1, file)
}

func TestCatalogEmptyNameNeverResolves(t *testing.T) {
	path := "test_catalog_empty_name.dat"
	os.Remove(path)
	defer os.Remove(path)

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf, err := NewHeapFile(path, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf, "", "")

	_, err = cat.getTableId("")
	require.Error(t, err)

	name, err := cat.getTableName(hf.ID())
	require.NoError(t, err)
	require.Equal(t, "", name)
}

func TestCatalogGetTableIdMissingFails(t *testing.T) {
	cat := NewCatalog()
	_, err := cat.getTableId("ghost")
	require.Error(t, err)
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, NoSuchElementError, engineErr.Code())
}

func TestCatalogTableIdIterAndClear(t *testing.T) {
	path1 := "test_catalog_iter1.dat"
	path2 := "test_catalog_iter2.dat"
	os.Remove(path1)
	os.Remove(path2)
	defer os.Remove(path1)
	defer os.Remove(path2)

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	hf1, err := NewHeapFile(path1, testTupleDesc(), bp)
	require.NoError(t, err)
	hf2, err := NewHeapFile(path2, testTupleDesc(), bp)
	require.NoError(t, err)
	cat.addTable(hf1, "a", "")
	cat.addTable(hf2, "b", "")

	ids := cat.tableIdIter()
	require.ElementsMatch(t, []int64{hf1.ID(), hf2.ID()}, ids)

	cat.clear()
	require.Empty(t, cat.tableIdIter())
	_, err = cat.getTableId("a")
	require.Error(t, err)
}

func TestCatalogLoadSchemaParsesFields(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "catalog.txt")
	contents := "# a comment\n\npeople (name string pk, age int)\norders (id int pk, item string)\n"
	require.NoError(t, os.WriteFile(schemaPath, []byte(contents), 0o644))

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	require.NoError(t, cat.LoadSchema(schemaPath, bp))
	defer os.Remove(filepath.Join(dir, "people.dat"))
	defer os.Remove(filepath.Join(dir, "orders.dat"))

	peopleID, err := cat.getTableId("people")
	require.NoError(t, err)
	pkey, err := cat.getPrimaryKey(peopleID)
	require.NoError(t, err)
	require.Equal(t, "name", pkey)

	td, err := cat.getTupleDesc(peopleID)
	require.NoError(t, err)
	require.Len(t, td.Fields, 2)
	require.Equal(t, "name", td.Fields[0].Fname)
	require.Equal(t, StringType, td.Fields[0].Ftype)
	require.Equal(t, "age", td.Fields[1].Fname)
	require.Equal(t, IntType, td.Fields[1].Ftype)

	ordersID, err := cat.getTableId("orders")
	require.NoError(t, err)
	ordersPkey, err := cat.getPrimaryKey(ordersID)
	require.NoError(t, err)
	require.Equal(t, "id", ordersPkey)
}

func TestCatalogLoadSchemaRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "bad_catalog.txt")
	require.NoError(t, os.WriteFile(schemaPath, []byte("not a valid line\n"), 0o644))

	bp, err := NewBufferPool(16)
	require.NoError(t, err)
	cat := NewCatalog()
	bp.SetCatalog(cat)

	err = cat.LoadSchema(schemaPath, bp)
	require.Error(t, err)
}
