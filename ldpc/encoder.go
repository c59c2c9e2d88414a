package ldpc

import "fmt"

// EncoderType selects the performance tier of an encoder instance.
type EncoderType uint8

const (
	// TypeAuto resolves to the packed tier. The choice happens once, at
	// construction.
	TypeAuto EncoderType = iota
	// TypeGeneric processes one bit per byte. It is the portable
	// reference tier; the packed tiers must agree with it bit for bit.
	TypeGeneric
	// TypePacked processes 64 bits per machine word. Lifting sizes up to
	// 64 use a single word per block, larger ones a word group.
	TypePacked
)

func (t EncoderType) String() string {
	switch t {
	case TypeAuto:
		return "auto"
	case TypeGeneric:
		return "generic"
	case TypePacked:
		return "packed"
	}
	return fmt.Sprintf("type%d?", uint8(t))
}

// Option adjusts encoder construction.
type Option func(*encoderOptions)

type encoderOptions struct {
	strictRM bool
}

// WithStrictRateMatch makes EncodeRM reject requested lengths shorter than
// the high-rate region instead of silently padding them up to it.
func WithStrictRateMatch() Option {
	return func(o *encoderOptions) { o.strictRM = true }
}

// backend is one performance tier bound to an encoder instance. encode
// assumes validated arguments: len(src) = liftK, len(dst) covers nLayers
// parity layers plus the transmitted systematic blocks.
type backend interface {
	encode(dst, src []byte, nLayers int)
	release()
}

// Encoder encodes fixed-size message blocks into rate-matched NR LDPC
// codewords. All per-instance decisions happen in NewEncoder: the base
// graph table is expanded for the lifting size, the high-rate kernel
// variant is resolved, and the performance tier is bound. Encode calls
// only run the bound pipeline.
//
// An Encoder is not safe for concurrent use; run one instance per
// goroutine or serialize calls externally. Close releases the scratch
// buffers to a shared pool.
type Encoder struct {
	bg     BaseGraph
	typ    EncoderType
	ls     int
	setIdx int

	bgK, bgM, bgN       int
	liftK, liftM, liftN int

	hrCase  int
	pcm     *compactPCM
	strict  bool
	backend backend
}

// NewEncoder builds an encoder for one base graph, lifting size and
// performance tier. Configuration errors (unknown graph, unsupported
// lifting size, unknown tier, inconsistent table) are reported here;
// a returned encoder always encodes.
func NewEncoder(bg BaseGraph, liftSize int, typ EncoderType, opts ...Option) (*Encoder, error) {
	if !bg.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBaseGraph, uint8(bg))
	}
	setIdx := setIndexOf(liftSize)
	if setIdx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrLiftingSize, liftSize)
	}
	if typ > TypePacked {
		return nil, fmt.Errorf("%w: %d", ErrEncoderType, uint8(typ))
	}

	var o encoderOptions
	for _, opt := range opts {
		opt(&o)
	}

	table, err := baseGraphFor(bg)
	if err != nil {
		return nil, err
	}
	pcm, err := newCompactPCM(table, liftSize, setIdx)
	if err != nil {
		return nil, err
	}
	hrCase, err := highRateCase(bg, setIdx)
	if err != nil {
		return nil, err
	}

	k, m, n := bg.dims()
	e := &Encoder{
		bg:     bg,
		typ:    typ,
		ls:     liftSize,
		setIdx: setIdx,
		bgK:    k,
		bgM:    m,
		bgN:    n,
		liftK:  k * liftSize,
		liftM:  m * liftSize,
		liftN:  n * liftSize,
		hrCase: hrCase,
		pcm:    pcm,
		strict: o.strictRM,
	}
	if e.typ == TypeAuto {
		e.typ = TypePacked
	}
	hrShift := pcm.hrRotation(bg, k, hrCase)
	switch {
	case e.typ == TypeGeneric:
		e.backend = newGenericBackend(pcm, k, m, liftSize, hrCase, hrShift)
	case liftSize <= 64:
		e.backend = newPackedBackend(pcm, k, m, liftSize, hrCase, hrShift)
	default:
		e.backend = newPackedLongBackend(pcm, k, m, liftSize, hrCase, hrShift)
	}
	return e, nil
}

// BaseGraph returns the base graph the encoder was built for.
func (e *Encoder) BaseGraph() BaseGraph { return e.bg }

// LiftingSize returns the lifting size the encoder was built for.
func (e *Encoder) LiftingSize() int { return e.ls }

// SetIndex returns the lifting-size set the lifting size belongs to.
func (e *Encoder) SetIndex() int { return e.setIdx }

// Type returns the resolved performance tier; never TypeAuto.
func (e *Encoder) Type() EncoderType { return e.typ }

// MessageLen returns the expected input length in bits: bgK blocks of the
// lifting size. The first two blocks are carried in the input but never
// transmitted.
func (e *Encoder) MessageLen() int { return e.liftK }

// CodewordLen returns the full-rate codeword length in bits, with the two
// punctured systematic blocks already removed.
func (e *Encoder) CodewordLen() int { return e.liftN - 2*e.ls }

// EffectiveCodewordLen returns the codeword length EncodeRM would actually
// produce for a requested rate-matched length: clamped to the full-rate
// length, padded up to the high-rate region, and rounded up to a whole
// number of blocks.
func (e *Encoder) EffectiveCodewordLen(rmLength int) int {
	eff, _ := e.normalizeRM(rmLength, false)
	return eff
}

func (e *Encoder) normalizeRM(rm int, strict bool) (int, error) {
	if max := e.liftN - 2*e.ls; rm > max {
		rm = max
	}
	// The high-rate region spans bgK+4 blocks, two of which are punctured.
	if floor := (e.bgK + 2) * e.ls; rm < floor {
		if strict {
			return 0, fmt.Errorf("%w: %d < %d", ErrRateMatchLength, rm, floor)
		}
		rm = floor
	}
	if rm%e.ls != 0 {
		rm = (rm/e.ls + 1) * e.ls
	}
	return rm, nil
}

// Encode produces the full-rate codeword: every parity block the base
// graph defines, CodewordLen bits in total. dst is reused when it has
// sufficient capacity, following append semantics.
func (e *Encoder) Encode(dst, src []byte) ([]byte, error) {
	return e.EncodeRM(dst, src, e.liftN-2*e.ls)
}

// EncodeRM produces a rate-matched codeword of (normalized) rmLength bits:
// the systematic blocks minus the two punctured ones, followed by as many
// parity blocks as the length requires. Input and output carry one bit per
// byte. Usage errors leave dst untouched.
func (e *Encoder) EncodeRM(dst, src []byte, rmLength int) ([]byte, error) {
	if e.backend == nil {
		return nil, ErrClosed
	}
	if len(src)/e.bgK != e.ls {
		return nil, fmt.Errorf("%w: got %d bits, want %d", ErrInputLength, len(src), e.liftK)
	}
	eff, err := e.normalizeRM(rmLength, e.strict)
	if err != nil {
		return nil, err
	}

	if cap(dst) < eff {
		dst = make([]byte, eff)
	}
	dst = dst[:eff]

	// The codeword keeps bgK-2 systematic blocks; the rest is parity.
	nLayers := eff/e.ls - e.bgK + 2
	e.backend.encode(dst, src, nLayers)
	return dst, nil
}

// Close releases the encoder's scratch buffers to the shared pool. It is
// idempotent; encoding after Close returns ErrClosed.
func (e *Encoder) Close() error {
	if e.backend != nil {
		e.backend.release()
		e.backend = nil
	}
	return nil
}
