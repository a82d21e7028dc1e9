package relstore

// SeqScan is a full scan of one table's heap file, in on-disk order. When
// alias is non-empty, every output field is qualified with it -- the
// standard way a query plan lets the same table appear twice (e.g. a
// self-join) without name collisions. With an empty alias the table's schema
// is used as is, with unqualified fields.
type SeqScan struct {
	tableId int64
	alias   string
	catalog *Catalog

	desc *TupleDesc
	tid  TransactionID
	iter DbFileIterator
}

// NewSeqScan constructs a scan of tableId. The transaction is bound later,
// at Open, which opens the heap file iterator under it.
func NewSeqScan(catalog *Catalog, tableId int64, alias string) (*SeqScan, error) {
	td, err := catalog.getTupleDesc(tableId)
	if err != nil {
		return nil, err
	}
	desc := td
	if alias != "" {
		desc = td.setTableAlias(alias)
	}
	return &SeqScan{tableId: tableId, alias: alias, catalog: catalog, desc: desc}, nil
}

// Descriptor implements Operator.
func (s *SeqScan) Descriptor() *TupleDesc { return s.desc }

// SetChildren implements Operator; SeqScan is a leaf and accepts none.
func (s *SeqScan) SetChildren(children []Operator) {}

// Open implements Operator.
func (s *SeqScan) Open(tid TransactionID) error {
	s.tid = tid
	file, err := s.catalog.getDatabaseFile(s.tableId)
	if err != nil {
		return err
	}
	iter, err := file.Iterator(tid)
	if err != nil {
		return err
	}
	if err := iter.Open(); err != nil {
		return err
	}
	s.iter = iter
	return nil
}

// HasNext implements Operator.
func (s *SeqScan) HasNext() (bool, error) {
	return s.iter.HasNext()
}

// Next implements Operator: tags the tuple with this scan's (possibly
// aliased) schema so downstream field lookups resolve by qualifier.
func (s *SeqScan) Next() (*Tuple, error) {
	t, err := s.iter.Next()
	if err != nil {
		return nil, err
	}
	t.Desc = *s.desc
	return t, nil
}

// Rewind implements Operator.
func (s *SeqScan) Rewind() error {
	return s.iter.Rewind()
}

// Close implements Operator.
func (s *SeqScan) Close() error {
	if s.iter == nil {
		return nil
	}
	return s.iter.Close()
}
