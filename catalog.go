package relstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// tableEntry is one Catalog registration: a table's storage, schema, and
// declared primary key field name (empty when the table has none).
type tableEntry struct {
	name string
	file DBFile
	pkey string
}

// Catalog is an in-memory registry mapping table id to (heap file, schema,
// primary key name). It never touches SQL text; populating it from a schema
// file is the separate, explicit LoadSchema call.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[int64]*tableEntry
	nameToID map[string]int64
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:     make(map[int64]*tableEntry),
		nameToID: make(map[string]int64),
	}
}

// addTable registers file under name with primary key pkey. A name
// collision overwrites the earlier binding (the old table id remains valid
// for anyone still holding it, but the name now resolves to the new file);
// an empty name is legal and simply never resolves via getTableId.
func (c *Catalog) addTable(file DBFile, name string, pkey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := file.ID()
	c.byID[id] = &tableEntry{name: name, file: file, pkey: pkey}
	if name != "" {
		c.nameToID[name] = id
	}
}

// getTableId resolves a table name to its id, failing when absent.
func (c *Catalog) getTableId(name string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.nameToID[name]
	if !ok {
		return 0, NewError(NoSuchElementError, fmt.Sprintf("no table named %q", name))
	}
	return id, nil
}

// getDatabaseFile returns the DBFile backing table id.
func (c *Catalog) getDatabaseFile(id int64) (DBFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return nil, NewError(NoSuchElementError, "no table with that id")
	}
	return e.file, nil
}

// getTupleDesc returns the schema of table id.
func (c *Catalog) getTupleDesc(id int64) (*TupleDesc, error) {
	f, err := c.getDatabaseFile(id)
	if err != nil {
		return nil, err
	}
	return f.Descriptor(), nil
}

// getPrimaryKey returns the declared primary key field name for table id,
// which may be empty.
func (c *Catalog) getPrimaryKey(id int64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return "", NewError(NoSuchElementError, "no table with that id")
	}
	return e.pkey, nil
}

// getTableName returns the registered name of table id.
func (c *Catalog) getTableName(id int64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok {
		return "", NewError(NoSuchElementError, "no table with that id")
	}
	return e.name, nil
}

// tableIdIter returns every registered table id, in no particular order.
func (c *Catalog) tableIdIter() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int64, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	return ids
}

// clear removes every registration.
func (c *Catalog) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byID = make(map[int64]*tableEntry)
	c.nameToID = make(map[string]int64)
}

// LoadSchema parses a catalog text file of lines shaped
// "tablename (field1 type1 [pk], field2 type2, ...)", one table per line,
// resolves each table's data file to "<dir>/<tablename>.dat" (dir is the
// directory containing path), opens or creates a HeapFile there against bp,
// and registers it. Blank lines and lines beginning with "#" are skipped.
func (c *Catalog) LoadSchema(path string, bp *BufferPool) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapError(IOFailure, "opening catalog schema file", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, fields, pkey, err := parseCatalogLine(line)
		if err != nil {
			return WrapError(MalformedDataError, fmt.Sprintf("catalog line %d", lineNo), err)
		}
		td, err := NewTupleDesc(fields)
		if err != nil {
			return err
		}
		dataFile := filepath.Join(dir, name+".dat")
		hf, err := NewHeapFile(dataFile, td, bp)
		if err != nil {
			return err
		}
		c.addTable(hf, name, pkey)
	}
	if err := scanner.Err(); err != nil {
		return WrapError(IOFailure, "reading catalog schema file", err)
	}
	return nil
}

// parseCatalogLine parses "tablename (f1 type1 [pk], f2 type2, ...)".
func parseCatalogLine(line string) (string, []FieldType, string, error) {
	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < open {
		return "", nil, "", fmt.Errorf("expected \"name (fields)\", got %q", line)
	}
	name := strings.TrimSpace(line[:open])
	if name == "" {
		return "", nil, "", fmt.Errorf("empty table name")
	}
	body := line[open+1 : close]

	var fields []FieldType
	pkey := ""
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens := strings.Fields(part)
		if len(tokens) < 2 {
			return "", nil, "", fmt.Errorf("malformed field spec %q", part)
		}
		fname := tokens[0]
		typeTok := strings.ToLower(tokens[1])
		var ftype DBType
		switch typeTok {
		case "int":
			ftype = IntType
		case "string":
			ftype = StringType
		default:
			return "", nil, "", fmt.Errorf("unknown field type %q", tokens[1])
		}
		fields = append(fields, FieldType{Fname: fname, Ftype: ftype, StringMaxLen: DefaultStringMaxLen})
		if len(tokens) >= 3 && strings.EqualFold(tokens[2], "pk") {
			pkey = fname
		}
	}
	if len(fields) == 0 {
		return "", nil, "", fmt.Errorf("table %q declares no fields", name)
	}
	return name, fields, pkey, nil
}
