package relstore

// CostPerPage is the assumed cost of one page read, used by EstimateScanCost.
const CostPerPage = 1000.0

// NumHistBins is the default bucket count for every histogram TableStats builds.
const NumHistBins = 100

// TableStats holds one histogram per column of a table, built with two
// passes over its heap file, plus the page and tuple counts needed to estimate
// scan cost and cardinality. It only produces these statistics; planning a
// query around them is out of scope here.
type TableStats struct {
	numPages  int
	numTuples int32

	intHist    map[int]*IntHistogram
	stringHist map[int]*StringHistogram
}

// ComputeTableStats scans file twice, under its own fresh transaction
// (committed before returning): the first pass finds each INT column's
// min and max, the second fills an equi-width histogram for every column.
func ComputeTableStats(bp *BufferPool, file DBFile) (*TableStats, error) {
	td := file.Descriptor()

	mins := make([]int32, len(td.Fields))
	maxs := make([]int32, len(td.Fields))
	for i, ft := range td.Fields {
		if ft.Ftype == IntType {
			mins[i] = int32(1<<31 - 1)
			maxs[i] = -int32(1 << 31)
		}
	}

	tid := NewTID()
	scanRange := func(visit func(t *Tuple) error) error {
		iter, err := file.Iterator(tid)
		if err != nil {
			return err
		}
		if err := iter.Open(); err != nil {
			return err
		}
		defer iter.Close()
		for {
			has, err := iter.HasNext()
			if err != nil {
				return err
			}
			if !has {
				return nil
			}
			t, err := iter.Next()
			if err != nil {
				return err
			}
			if err := visit(t); err != nil {
				return err
			}
		}
	}

	numTuples := int32(0)
	if err := scanRange(func(t *Tuple) error {
		numTuples++
		for i, ft := range td.Fields {
			if ft.Ftype != IntType {
				continue
			}
			v := t.Fields[i].(IntField).Value
			if v < mins[i] {
				mins[i] = v
			}
			if v > maxs[i] {
				maxs[i] = v
			}
		}
		return nil
	}); err != nil {
		bp.transactionComplete(tid, false)
		return nil, err
	}

	intHist := make(map[int]*IntHistogram)
	stringHist := make(map[int]*StringHistogram)
	for i, ft := range td.Fields {
		switch ft.Ftype {
		case IntType:
			if maxs[i] < mins[i] {
				mins[i], maxs[i] = 0, 0
			}
			h, err := NewIntHistogram(NumHistBins, mins[i], maxs[i])
			if err != nil {
				bp.transactionComplete(tid, false)
				return nil, err
			}
			intHist[i] = h
		case StringType:
			h, err := NewStringHistogram(NumHistBins)
			if err != nil {
				bp.transactionComplete(tid, false)
				return nil, err
			}
			stringHist[i] = h
		}
	}

	if err := scanRange(func(t *Tuple) error {
		for i, ft := range td.Fields {
			switch ft.Ftype {
			case IntType:
				intHist[i].AddValue(t.Fields[i].(IntField).Value)
			case StringType:
				stringHist[i].AddValue(t.Fields[i].(StringField).Value)
			}
		}
		return nil
	}); err != nil {
		bp.transactionComplete(tid, false)
		return nil, err
	}

	bp.transactionComplete(tid, true)

	return &TableStats{
		numPages:   file.NumPages(),
		numTuples:  numTuples,
		intHist:    intHist,
		stringHist: stringHist,
	}, nil
}

// EstimateScanCost estimates the I/O cost of a full sequential scan: one
// CostPerPage charge per page, assuming no page is already cached.
func (s *TableStats) EstimateScanCost() float64 {
	return float64(s.numPages) * CostPerPage
}

// EstimateTableCardinality estimates the number of tuples a scan filtered by
// a predicate of the given selectivity would return.
func (s *TableStats) EstimateTableCardinality(selectivity float64) int {
	return int(float64(s.numTuples) * selectivity)
}

// EstimateSelectivity looks up fieldIndex's histogram and estimates the
// selectivity of "field op value".
func (s *TableStats) EstimateSelectivity(fieldIndex int, op BoolOp, value DBValue) (float64, error) {
	switch v := value.(type) {
	case IntField:
		h, ok := s.intHist[fieldIndex]
		if !ok {
			return 0, NewError(IncompatibleTypesError, "no INT histogram for that field")
		}
		return h.EstimateSelectivity(op, v.Value), nil
	case StringField:
		h, ok := s.stringHist[fieldIndex]
		if !ok {
			return 0, NewError(IncompatibleTypesError, "no STRING histogram for that field")
		}
		return h.EstimateSelectivity(op, v.Value), nil
	}
	return 0, NewError(IncompatibleTypesError, "unsupported value type for selectivity estimation")
}
