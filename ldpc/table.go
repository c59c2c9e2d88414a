package ldpc

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

//go:embed tables/bg1.txt tables/bg2.txt
var tableFS embed.FS

// bgEntry is one connected position of a base graph: block row, block
// column and the shift value for each of the eight lifting-size sets.
// Shifts are stored as read; they are reduced modulo the lifting size when
// a parity-check matrix is built.
type bgEntry struct {
	row, col int
	shifts   [numSets]uint16
}

// baseGraphTable holds one parsed base graph. Entries are ordered by
// (row, col) and rowIdx[r]..rowIdx[r+1] spans the entries of block row r.
type baseGraphTable struct {
	bg      BaseGraph
	k, m, n int
	entries []bgEntry
	rowIdx  []int
	digest  uint64
}

func (t *baseGraphTable) rowEntries(r int) []bgEntry {
	return t.entries[t.rowIdx[r]:t.rowIdx[r+1]]
}

var (
	tableOnce [2]sync.Once
	tables    [2]*baseGraphTable
	tableErr  [2]error
)

// baseGraphFor returns the parsed and validated table of bg. Tables are
// parsed from the embedded data once and shared by all encoders.
func baseGraphFor(bg BaseGraph) (*baseGraphTable, error) {
	if !bg.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBaseGraph, uint8(bg))
	}
	i := int(bg)
	tableOnce[i].Do(func() {
		name := "tables/bg1.txt"
		if bg == BG2 {
			name = "tables/bg2.txt"
		}
		data, err := tableFS.ReadFile(name)
		if err != nil {
			tableErr[i] = fmt.Errorf("%w: %s: %v", ErrTable, name, err)
			return
		}
		tables[i], tableErr[i] = loadBaseGraph(bg, data)
	})
	return tables[i], tableErr[i]
}

// loadBaseGraph parses a base graph description with one connected
// position per line: "row col s0 s1 ... s7". Lines starting with '#' and
// blank lines are ignored. The parsed table is structurally validated.
func loadBaseGraph(bg BaseGraph, data []byte) (*baseGraphTable, error) {
	k, m, n := bg.dims()
	t := &baseGraphTable{bg: bg, k: k, m: m, n: n}
	t.entries = make([]bgEntry, 0, 512)

	s := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2+numSets {
			return nil, fmt.Errorf("%w: %v line %d: want %d fields, got %d", ErrTable, bg, lineNo, 2+numSets, len(parts))
		}
		var e bgEntry
		var err error
		if e.row, err = strconv.Atoi(parts[0]); err != nil {
			return nil, fmt.Errorf("%w: %v line %d: row: %v", ErrTable, bg, lineNo, err)
		}
		if e.col, err = strconv.Atoi(parts[1]); err != nil {
			return nil, fmt.Errorf("%w: %v line %d: col: %v", ErrTable, bg, lineNo, err)
		}
		for j := 0; j < numSets; j++ {
			v, err := strconv.Atoi(parts[2+j])
			if err != nil {
				return nil, fmt.Errorf("%w: %v line %d: shift %d: %v", ErrTable, bg, lineNo, j, err)
			}
			if v < 0 || v >= maxLiftingSize {
				return nil, fmt.Errorf("%w: %v line %d: shift %d out of range", ErrTable, bg, lineNo, v)
			}
			e.shifts[j] = uint16(v)
		}
		t.entries = append(t.entries, e)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrTable, bg, err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.index()
	t.digest = t.computeDigest()
	return t, nil
}

// validate checks the z-independent structure: entry ordering and bounds,
// the double-diagonal core, the forced first parity column, and the
// identity extension. Shift congruences that depend on the lifting size
// are checked per instance in newCompactPCM.
func (t *baseGraphTable) validate() error {
	prevRow, prevCol := -1, -1
	for _, e := range t.entries {
		if e.row < 0 || e.row >= t.m || e.col < 0 || e.col >= t.n {
			return fmt.Errorf("%w: %v: position (%d,%d) out of range", ErrTable, t.bg, e.row, e.col)
		}
		if e.row < prevRow || (e.row == prevRow && e.col <= prevCol) {
			return fmt.Errorf("%w: %v: entries not ordered at (%d,%d)", ErrTable, t.bg, e.row, e.col)
		}
		prevRow, prevCol = e.row, e.col
	}

	has := make(map[[2]int]*bgEntry, len(t.entries))
	for i := range t.entries {
		e := &t.entries[i]
		has[[2]int{e.row, e.col}] = e
	}
	zeroAt := func(r, c int) error {
		e := has[[2]int{r, c}]
		if e == nil {
			return fmt.Errorf("%w: %v: missing diagonal entry (%d,%d)", ErrTable, t.bg, r, c)
		}
		if e.shifts != ([numSets]uint16{}) {
			return fmt.Errorf("%w: %v: diagonal entry (%d,%d) must have zero shifts", ErrTable, t.bg, r, c)
		}
		return nil
	}

	// Double diagonal of the high-rate core.
	for _, rc := range [][2]int{{0, t.k + 1}, {1, t.k + 1}, {1, t.k + 2}, {2, t.k + 2}, {2, t.k + 3}, {3, t.k + 3}} {
		if err := zeroAt(rc[0], rc[1]); err != nil {
			return err
		}
	}

	// First parity column: three of the four core rows connect to it.
	skipRow := 2
	if t.bg == BG2 {
		skipRow = 1
	}
	for r := 0; r < 4; r++ {
		e := has[[2]int{r, t.k}]
		if r == skipRow {
			if e != nil {
				return fmt.Errorf("%w: %v: unexpected entry (%d,%d)", ErrTable, t.bg, r, t.k)
			}
			continue
		}
		if e == nil {
			return fmt.Errorf("%w: %v: missing entry (%d,%d)", ErrTable, t.bg, r, t.k)
		}
	}

	// Extension rows: an all-zero identity diagonal, and no connections
	// beyond the core parity columns except that diagonal.
	rowSeen := make([]bool, t.m)
	for _, e := range t.entries {
		rowSeen[e.row] = true
		if e.row < 4 {
			if e.col > t.k+3 {
				return fmt.Errorf("%w: %v: core row %d reaches column %d", ErrTable, t.bg, e.row, e.col)
			}
			continue
		}
		if e.col > t.k+3 && e.col != t.k+e.row {
			return fmt.Errorf("%w: %v: extension row %d reaches column %d", ErrTable, t.bg, e.row, e.col)
		}
	}
	for r := 4; r < t.m; r++ {
		if err := zeroAt(r, t.k+r); err != nil {
			return err
		}
	}
	for r, seen := range rowSeen {
		if !seen {
			return fmt.Errorf("%w: %v: row %d has no entries", ErrTable, t.bg, r)
		}
	}
	return nil
}

func (t *baseGraphTable) index() {
	t.rowIdx = make([]int, t.m+1)
	r := 0
	for i, e := range t.entries {
		for r < e.row {
			r++
			t.rowIdx[r] = i
		}
	}
	for r < t.m {
		r++
		t.rowIdx[r] = len(t.entries)
	}
}

// computeDigest hashes the canonical entry list. The digest identifies the
// table revision in dumps and reports.
func (t *baseGraphTable) computeDigest() uint64 {
	h := xxhash.New()
	var buf [2 + 2*numSets]byte
	for _, e := range t.entries {
		buf[0] = byte(e.row)
		buf[1] = byte(e.col)
		for j, s := range e.shifts {
			buf[2+2*j] = byte(s)
			buf[3+2*j] = byte(s >> 8)
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// TableDigest returns the xxhash64 digest of the embedded table of bg,
// formatted as 16 hex digits.
func TableDigest(bg BaseGraph) (string, error) {
	t, err := baseGraphFor(bg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", t.digest), nil
}
