package ldpc

import "fmt"

// noEdge marks an unconnected position of a lifted parity-check matrix.
const noEdge = ^uint16(0)

// compactPCM is the parity-check matrix of one encoder instance in compact
// form: one rotation per block position, already reduced modulo the
// lifting size, noEdge where the base graph has no connection.
type compactPCM struct {
	rows, cols int
	shifts     []uint16
}

func (p *compactPCM) at(r, c int) uint16 {
	return p.shifts[r*p.cols+c]
}

// newCompactPCM expands the per-set shift column of a base graph table
// for one lifting size. The high-rate core is checked against the closed
// form the encoding kernels rely on; a table that breaks those relations
// cannot be encoded by back-substitution and is rejected here rather than
// producing silently inconsistent codewords.
func newCompactPCM(t *baseGraphTable, ls, setIdx int) (*compactPCM, error) {
	p := &compactPCM{rows: t.m, cols: t.n, shifts: make([]uint16, t.m*t.n)}
	for i := range p.shifts {
		p.shifts[i] = noEdge
	}
	for _, e := range t.entries {
		p.shifts[e.row*t.n+e.col] = uint16(int(e.shifts[setIdx]) % ls)
	}
	if err := p.checkHighRate(t.bg, t.k, ls, setIdx); err != nil {
		return nil, err
	}
	return p, nil
}

// checkHighRate verifies the rotations of the first parity column. The
// four kernels assume a fixed pattern there: two rows whose rotations
// cancel pairwise plus one row that determines the rotation of the first
// parity block (zero for the regular variants, the set's characteristic
// value otherwise).
func (p *compactPCM) checkHighRate(bg BaseGraph, k, ls, setIdx int) error {
	hrCase, err := highRateCase(bg, setIdx)
	if err != nil {
		return err
	}
	want := func(r int, v uint16) error {
		if got := p.at(r, k); got != v {
			return fmt.Errorf("%w: %v ls %d: first parity column row %d has rotation %d, want %d",
				ErrTable, bg, ls, r, got, v)
		}
		return nil
	}
	connected := func(r int) error {
		if p.at(r, k) == noEdge {
			return fmt.Errorf("%w: %v ls %d: first parity column row %d not connected", ErrTable, bg, ls, r)
		}
		return nil
	}
	switch hrCase {
	case 1: // BG1, rotate-by-one closing
		if err := want(0, 1); err != nil {
			return err
		}
		if err := want(1, 0); err != nil {
			return err
		}
		return want(3, 1)
	case 2: // BG1 set 6, row 1 carries the characteristic rotation
		if err := want(0, 0); err != nil {
			return err
		}
		if err := want(3, 0); err != nil {
			return err
		}
		return connected(1)
	case 3: // BG2, rotate-by-one closing
		if err := want(0, 1); err != nil {
			return err
		}
		if err := want(2, 0); err != nil {
			return err
		}
		return want(3, 1)
	case 4: // BG2 sets 3 and 7, row 2 carries the characteristic rotation
		if err := want(0, 0); err != nil {
			return err
		}
		if err := want(3, 0); err != nil {
			return err
		}
		return connected(2)
	}
	return fmt.Errorf("%w: unhandled high-rate case %d", ErrTable, hrCase)
}

// hrRotation returns the rotation the case-2 and case-4 kernels undo when
// recovering the first parity block. For the regular cases it is zero.
func (p *compactPCM) hrRotation(bg BaseGraph, k int, hrCase int) int {
	switch hrCase {
	case 2:
		return int(p.at(1, k))
	case 4:
		return int(p.at(2, k))
	}
	return 0
}
