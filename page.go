package relstore

// Page is the unit of buffer-pool caching and locking. HeapPage is its
// only implementer today; the buffer pool and iterators depend only on
// this interface so a future page format (e.g. an index page) can be
// added without touching BufferPool.
type Page interface {
	// ID reports this page's identity.
	ID() PageID
	// IsDirty reports whether the page has unflushed modifications.
	IsDirty() bool
	// MarkDirty records which transaction last dirtied the page, or
	// clears the dirty flag (dirty=false) on flush/discard.
	MarkDirty(tid TransactionID, dirty bool)
	// DirtyTid reports the transaction that last dirtied the page, if any.
	DirtyTid() (TransactionID, bool)
	// Serialize emits the page's exact on-disk byte representation.
	Serialize() ([]byte, error)
	// GetBeforeImage returns a snapshot of the page as of the last load or
	// commit, for abort rollback.
	GetBeforeImage() Page
	// SetBeforeImage captures the page's current bytes as its new
	// before-image, called after a successful commit flush.
	SetBeforeImage()
	// file reports the DBFile this page belongs to, used by the buffer
	// pool to route flushes.
	file() DBFile
}

// DBFile is a table's on-disk storage; HeapFile is its only implementer.
type DBFile interface {
	// ID is a stable identifier for this file, used as the table id
	// component of every PageID it produces.
	ID() int64
	// Descriptor returns the file's schema.
	Descriptor() *TupleDesc
	// ReadPage reads a single page from disk.
	ReadPage(pageNo int) (Page, error)
	// WritePage forces a single page to disk at its offset.
	WritePage(p Page) error
	// NumPages reports the file's current page count.
	NumPages() int
	// InsertTuple inserts t, returning every page it modified (for the
	// caller to mark dirty under the inserting transaction).
	InsertTuple(tid TransactionID, t *Tuple) ([]Page, error)
	// DeleteTuple removes t (located via t.Rid), returning the pages it
	// modified.
	DeleteTuple(tid TransactionID, t *Tuple) ([]Page, error)
	// Iterator returns a DbFileIterator over every live tuple in the file.
	Iterator(tid TransactionID) (DbFileIterator, error)
}

// DbFileIterator is the pull-based contract HeapFile.Iterator returns.
type DbFileIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*Tuple, error)
	Rewind() error
	Close() error
}
