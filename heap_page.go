package relstore

import (
	"bytes"
)

// HeapPage is the only Page implementation: a slotted page holding
// fixed-width tuples, with a bit-mapped slot header.
//
// Layout within PageSize bytes:
//
//	header: ceil(numSlots/8) bytes, slot i's occupied bit at byte i/8, bit
//	        i%8 (LSB-first within each byte)
//	numSlots slots of td.Size() bytes each, in slot order
//	zero padding out to exactly PageSize bytes
//
// numSlots = floor((PageSize*8) / (td.Size()*8 + 1)): each slot costs
// td.Size() bytes plus one header bit.
type HeapPage struct {
	pid      PageID
	td       *TupleDesc
	hf       *HeapFile
	tuples   []*Tuple // nil entry == empty slot

	dirty    bool
	dirtyTid TransactionID

	beforeImageBytes []byte
}

func numSlotsForTupleDesc(td *TupleDesc, pageSize int) int {
	tupleBits := td.Size()*8 + 1
	return (pageSize * 8) / tupleBits
}

func headerBytesForSlots(numSlots int) int {
	return (numSlots + 7) / 8
}

// emptyHeapPageBytes returns an all-zero page image: a valid serialization
// of a page with every slot empty.
func emptyHeapPageBytes(pageSize int) []byte {
	return make([]byte, pageSize)
}

// newHeapPage constructs a HeapPage by parsing a previously-serialized
// PageSize-byte image. Non-occupied slots are skipped (their bytes are not
// parsed as a tuple) and left nil in the tuple array.
func newHeapPage(pid PageID, data []byte, td *TupleDesc, f *HeapFile) (*HeapPage, error) {
	if len(data) != PageSize {
		return nil, NewError(IncompatibleTypesError, "heap page image does not match the configured page size")
	}
	numSlots := numSlotsForTupleDesc(td, PageSize)
	headerLen := headerBytesForSlots(numSlots)

	p := &HeapPage{
		pid:    pid,
		td:     td,
		hf:     f,
		tuples: make([]*Tuple, numSlots),
	}

	header := data[:headerLen]
	body := bytes.NewReader(data[headerLen:])
	tupleSize := td.Size()

	for slot := 0; slot < numSlots; slot++ {
		occupied := slotBitSet(header, slot)
		raw := make([]byte, tupleSize)
		if _, err := body.Read(raw); err != nil {
			return nil, WrapError(IOFailure, "reading slot bytes from page image", err)
		}
		if !occupied {
			continue
		}
		buf := bytes.NewBuffer(raw)
		tup, err := readTupleFrom(buf, td)
		if err != nil {
			return nil, WrapError(IOFailure, "decoding tuple from page image", err)
		}
		tup.Desc = *td
		tup.Rid = &RecordID{PageID: pid, SlotIndex: slot}
		p.tuples[slot] = tup
	}

	p.SetBeforeImage()
	return p, nil
}

func slotBitSet(header []byte, slot int) bool {
	byteIdx := slot / 8
	bit := uint(slot % 8)
	if byteIdx >= len(header) {
		return false
	}
	return header[byteIdx]&(1<<bit) != 0
}

func setSlotBit(header []byte, slot int, occupied bool) {
	byteIdx := slot / 8
	bit := uint(slot % 8)
	if occupied {
		header[byteIdx] |= 1 << bit
	} else {
		header[byteIdx] &^= 1 << bit
	}
}

// ID implements Page.
func (p *HeapPage) ID() PageID { return p.pid }

// IsDirty implements Page.
func (p *HeapPage) IsDirty() bool { return p.dirty }

// MarkDirty implements Page.
func (p *HeapPage) MarkDirty(tid TransactionID, dirty bool) {
	p.dirty = dirty
	if dirty {
		p.dirtyTid = tid
	} else {
		p.dirtyTid = TransactionID{}
	}
}

// DirtyTid implements Page.
func (p *HeapPage) DirtyTid() (TransactionID, bool) {
	if !p.dirty {
		return TransactionID{}, false
	}
	return p.dirtyTid, true
}

// file implements the unexported Page.file accessor used by the buffer
// pool to route flushes back through the owning DBFile.
func (p *HeapPage) file() DBFile { return p.hf }

// getNumSlots reports the page's fixed slot count, N.
func (p *HeapPage) getNumSlots() int {
	return len(p.tuples)
}

// getNumEmptySlots counts slots with no tuple.
func (p *HeapPage) getNumEmptySlots() int {
	n := 0
	for _, t := range p.tuples {
		if t == nil {
			n++
		}
	}
	return n
}

// InsertTuple stores t in the lowest-index empty slot, failing if the page
// has no empty slot or if t's schema does not match the page's.
func (p *HeapPage) InsertTuple(t *Tuple) error {
	if !t.Desc.Equals(p.td) {
		return NewError(TypeMismatchError, "tuple schema does not match this page's TupleDesc")
	}
	for slot, existing := range p.tuples {
		if existing != nil {
			continue
		}
		stored := &Tuple{
			Desc:   *p.td,
			Fields: append([]DBValue{}, t.Fields...),
		}
		rid := &RecordID{PageID: p.pid, SlotIndex: slot}
		stored.Rid = rid
		p.tuples[slot] = stored
		t.Rid = rid
		return nil
	}
	return NewError(PageFullError, "no empty slot on this page")
}

// DeleteTuple clears the slot named by t.Rid, failing if t.Rid is absent,
// points at a different page, names an already-empty slot, or the stored
// tuple's value differs from t.
func (p *HeapPage) DeleteTuple(t *Tuple) error {
	if t.Rid == nil {
		return NewError(TupleNotFoundError, "tuple has no RecordID")
	}
	if t.Rid.PageID != p.pid {
		return NewError(TupleNotFoundError, "tuple's RecordID names a different page")
	}
	slot := t.Rid.SlotIndex
	if slot < 0 || slot >= len(p.tuples) || p.tuples[slot] == nil {
		return NewError(TupleNotFoundError, "slot is already empty")
	}
	if !p.tuples[slot].Equals(t) {
		return NewError(TupleNotFoundError, "stored tuple does not match the tuple being deleted")
	}
	p.tuples[slot] = nil
	t.Rid = nil
	return nil
}

// tupleIter returns a single-pass, finite function yielding the page's
// occupied slots in ascending order. It is not restartable: callers that
// need to scan the page again must call tupleIter again.
func (p *HeapPage) tupleIter() func() (*Tuple, error) {
	i := 0
	return func() (*Tuple, error) {
		for i < len(p.tuples) {
			t := p.tuples[i]
			i++
			if t != nil {
				return t, nil
			}
		}
		return nil, nil
	}
}

// Serialize implements Page: header bitmap, then each slot (occupied
// tuples serialized in schema order; empty slots as td.Size() zero bytes),
// padded to PageSize.
func (p *HeapPage) Serialize() ([]byte, error) {
	numSlots := len(p.tuples)
	headerLen := headerBytesForSlots(numSlots)
	header := make([]byte, headerLen)

	var body bytes.Buffer
	tupleSize := p.td.Size()
	for slot, t := range p.tuples {
		if t == nil {
			body.Write(make([]byte, tupleSize))
			continue
		}
		setSlotBit(header, slot, true)
		before := body.Len()
		if err := t.writeTo(&body, p.td); err != nil {
			return nil, err
		}
		written := body.Len() - before
		if written < tupleSize {
			body.Write(make([]byte, tupleSize-written))
		}
	}

	out := make([]byte, PageSize)
	copy(out, header)
	copy(out[headerLen:], body.Bytes())
	return out, nil
}

// GetBeforeImage implements Page: returns a fresh HeapPage parsed from the
// last-captured before-image bytes.
func (p *HeapPage) GetBeforeImage() Page {
	before, err := newHeapPage(p.pid, p.beforeImageBytes, p.td, p.hf)
	if err != nil {
		// beforeImageBytes was produced by SetBeforeImage from a
		// successful Serialize, so this can only fail if PageSize was
		// changed mid-run; surface an empty page rather than panicking.
		empty, _ := newHeapPage(p.pid, emptyHeapPageBytes(PageSize), p.td, p.hf)
		return empty
	}
	return before
}

// SetBeforeImage implements Page: snapshots the page's current serialized
// bytes as its new before-image.
func (p *HeapPage) SetBeforeImage() {
	data, err := p.Serialize()
	if err != nil {
		return
	}
	p.beforeImageBytes = data
}
