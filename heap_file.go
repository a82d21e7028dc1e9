package relstore

import (
	"hash/fnv"
	"io"
	"os"
	"sync"
)

// HeapFile is an unordered collection of tuples backed by a single regular
// file: pages are appended at the end to grow, and a tuple's physical home is
// never reorganized once written.
type HeapFile struct {
	backingFile string
	td          *TupleDesc
	bp          *BufferPool
	tableID     int64

	mu       sync.Mutex
	numPages int
}

// NewHeapFile opens (creating if necessary) backingFile as a HeapFile of the
// given schema, caching pages through bp. The file's table id is a stable
// hash of its path, so the same path always yields the same id across
// process restarts.
func NewHeapFile(backingFile string, td *TupleDesc, bp *BufferPool) (*HeapFile, error) {
	f, err := os.OpenFile(backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, WrapError(IOFailure, "opening heap file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, WrapError(IOFailure, "statting heap file", err)
	}

	hf := &HeapFile{
		backingFile: backingFile,
		td:          td,
		bp:          bp,
		tableID:     tableIDHash(backingFile),
		numPages:    numPagesForSize(info.Size()),
	}
	return hf, nil
}

func tableIDHash(path string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return int64(h.Sum64())
}

func numPagesForSize(size int64) int {
	n := int(size / int64(PageSize))
	if size%int64(PageSize) != 0 {
		n++
	}
	return n
}

// ID implements DBFile.
func (f *HeapFile) ID() int64 { return f.tableID }

// Descriptor implements DBFile.
func (f *HeapFile) Descriptor() *TupleDesc { return f.td }

// NumPages implements DBFile: ceil(file length / PageSize).
func (f *HeapFile) NumPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numPages
}

// ReadPage implements DBFile: seeks to pageNo*PageSize and reads exactly
// PageSize bytes. A short read at EOF is a malformed-file condition, not an
// expected empty page -- callers must have already extended the file via
// WritePage or the allocation path in InsertTuple.
func (f *HeapFile) ReadPage(pageNo int) (Page, error) {
	file, err := os.OpenFile(f.backingFile, os.O_RDWR, 0666)
	if err != nil {
		return nil, WrapError(IOFailure, "opening heap file for read", err)
	}
	defer file.Close()

	data := make([]byte, PageSize)
	if _, err := file.Seek(int64(pageNo)*int64(PageSize), io.SeekStart); err != nil {
		return nil, WrapError(IOFailure, "seeking to page offset", err)
	}
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, WrapError(IOFailure, "short read of page image", err)
	}

	pid := PageID{TableID: f.tableID, PageNo: pageNo}
	return newHeapPage(pid, data, f.td, f)
}

// WritePage implements DBFile: fails if p belongs to a different table.
func (f *HeapFile) WritePage(p Page) error {
	pid := p.ID()
	if pid.TableID != f.tableID {
		return NewError(IncompatibleTypesError, "page belongs to a different table than this heap file")
	}

	data, err := p.Serialize()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(f.backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return WrapError(IOFailure, "opening heap file for write", err)
	}
	defer file.Close()

	if _, err := file.Seek(int64(pid.PageNo)*int64(PageSize), io.SeekStart); err != nil {
		return WrapError(IOFailure, "seeking to page offset", err)
	}
	if _, err := file.Write(data); err != nil {
		return WrapError(IOFailure, "writing page image", err)
	}
	return nil
}

// allocatePage atomically extends the file by one empty page and bumps
// numPages, returning the new page's number. Serialized by f.mu so two
// concurrent inserters never claim the same page number.
func (f *HeapFile) allocatePage() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pageNo := f.numPages
	pid := PageID{TableID: f.tableID, PageNo: pageNo}
	empty, err := newHeapPage(pid, emptyHeapPageBytes(PageSize), f.td, f)
	if err != nil {
		return 0, err
	}
	if err := f.WritePage(empty); err != nil {
		return 0, err
	}
	f.numPages++
	return pageNo, nil
}

// InsertTuple implements DBFile: scans existing pages for free space under a
// READ probe upgraded to WRITE, allocating a fresh page only when none is
// found. On a full page, releasePage drops the probing READ hold. On a page
// with space, an upgrade by the sole reader folds the read hold into the
// write hold; a transaction that already holds WRITE on that page keeps the
// probe's read hold until it completes.
func (f *HeapFile) InsertTuple(tid TransactionID, t *Tuple) ([]Page, error) {
	numPages := f.NumPages()

	for pageNo := 0; pageNo < numPages; pageNo++ {
		pid := PageID{TableID: f.tableID, PageNo: pageNo}
		page, err := f.bp.getPage(tid, pid, ReadPerm)
		if err != nil {
			return nil, err
		}
		hp := page.(*HeapPage)
		if hp.getNumEmptySlots() == 0 {
			f.bp.releasePage(tid, pid)
			continue
		}
		wpage, err := f.bp.getPage(tid, pid, WritePerm)
		if err != nil {
			return nil, err
		}
		whp := wpage.(*HeapPage)
		if whp.getNumEmptySlots() == 0 {
			// Lost the race to another inserter between the READ probe
			// and the WRITE upgrade; keep scanning.
			continue
		}
		if err := whp.InsertTuple(t); err != nil {
			return nil, err
		}
		whp.MarkDirty(tid, true)
		return []Page{whp}, nil
	}

	pageNo, err := f.allocatePage()
	if err != nil {
		return nil, err
	}
	pid := PageID{TableID: f.tableID, PageNo: pageNo}
	page, err := f.bp.getPage(tid, pid, WritePerm)
	if err != nil {
		return nil, err
	}
	hp := page.(*HeapPage)
	if err := hp.InsertTuple(t); err != nil {
		return nil, err
	}
	hp.MarkDirty(tid, true)
	return []Page{hp}, nil
}

// DeleteTuple implements DBFile: loads the page named by t.Rid under WRITE
// and clears its slot.
func (f *HeapFile) DeleteTuple(tid TransactionID, t *Tuple) ([]Page, error) {
	if t.Rid == nil {
		return nil, NewError(TupleNotFoundError, "tuple has no RecordID")
	}
	page, err := f.bp.getPage(tid, t.Rid.PageID, WritePerm)
	if err != nil {
		return nil, err
	}
	hp := page.(*HeapPage)
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	hp.MarkDirty(tid, true)
	return []Page{hp}, nil
}

// heapFileIterator is the DbFileIterator HeapFile.Iterator returns: it
// fetches pages from the buffer pool lazily, one at a time, as it advances,
// never pre-fetching the whole file.
type heapFileIterator struct {
	f        *HeapFile
	tid      TransactionID
	pageNo   int
	pageIter func() (*Tuple, error)
	pending  *Tuple
}

// Iterator implements DBFile.
func (f *HeapFile) Iterator(tid TransactionID) (DbFileIterator, error) {
	return &heapFileIterator{f: f, tid: tid}, nil
}

func (it *heapFileIterator) Open() error {
	return it.Rewind()
}

func (it *heapFileIterator) Rewind() error {
	it.pageNo = 0
	it.pageIter = nil
	it.pending = nil
	return nil
}

func (it *heapFileIterator) fillPageIter() error {
	if it.pageIter != nil {
		return nil
	}
	pid := PageID{TableID: it.f.tableID, PageNo: it.pageNo}
	page, err := it.f.bp.getPage(it.tid, pid, ReadPerm)
	if err != nil {
		return err
	}
	it.pageIter = page.(*HeapPage).tupleIter()
	return nil
}

func (it *heapFileIterator) HasNext() (bool, error) {
	if it.pending != nil {
		return true, nil
	}
	for it.pageNo < it.f.NumPages() {
		if err := it.fillPageIter(); err != nil {
			return false, err
		}
		t, err := it.pageIter()
		if err != nil {
			return false, err
		}
		if t != nil {
			it.pending = t
			return true, nil
		}
		it.pageNo++
		it.pageIter = nil
	}
	return false, nil
}

func (it *heapFileIterator) Next() (*Tuple, error) {
	if it.pending == nil {
		has, err := it.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, NewError(NoSuchElementError, "heap file iterator exhausted")
		}
	}
	t := it.pending
	it.pending = nil
	t.Desc = *it.f.td
	return t, nil
}

func (it *heapFileIterator) Close() error {
	it.pageIter = nil
	it.pending = nil
	return nil
}
