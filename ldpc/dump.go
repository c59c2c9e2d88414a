package ldpc

import (
	"encoding/json"
	"fmt"
	"os"
)

// TableDumpEntry is one connected block position of an expanded
// parity-check matrix, with its rotation already reduced modulo the
// lifting size.
type TableDumpEntry struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Shift int `json:"shift"`
}

// TableDump is the offline form of one expanded parity-check matrix, as
// written by the tables tool and consumed by external analysis scripts.
type TableDump struct {
	Version     int              `json:"version"`
	BaseGraph   string           `json:"baseGraph"`
	LiftingSize int              `json:"liftingSize"`
	SetIndex    int              `json:"setIndex"`
	BlockRows   int              `json:"blockRows"`
	BlockCols   int              `json:"blockCols"`
	Digest      string           `json:"digest"`
	Entries     []TableDumpEntry `json:"entries"`
}

const tableDumpVersion = 1

// DumpTable expands the base graph for one lifting size and returns it in
// offline form. The digest identifies the embedded source table.
func DumpTable(bg BaseGraph, liftSize int) (*TableDump, error) {
	setIdx := setIndexOf(liftSize)
	if setIdx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrLiftingSize, liftSize)
	}
	t, err := baseGraphFor(bg)
	if err != nil {
		return nil, err
	}
	pcm, err := newCompactPCM(t, liftSize, setIdx)
	if err != nil {
		return nil, err
	}
	d := &TableDump{
		Version:     tableDumpVersion,
		BaseGraph:   bg.String(),
		LiftingSize: liftSize,
		SetIndex:    setIdx,
		BlockRows:   t.m,
		BlockCols:   t.n,
		Digest:      fmt.Sprintf("%016x", t.digest),
		Entries:     make([]TableDumpEntry, 0, len(t.entries)),
	}
	for _, e := range t.entries {
		d.Entries = append(d.Entries, TableDumpEntry{
			Row:   e.row,
			Col:   e.col,
			Shift: int(pcm.at(e.row, e.col)),
		})
	}
	return d, nil
}

// SaveTableDump writes the dump to a JSON file.
func SaveTableDump(path string, d *TableDump) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
