package ldpc

import "errors"

// Configuration errors are returned by NewEncoder; the instance is unusable.
// Usage errors are returned per encode call and leave dst untouched.
var (
	ErrBaseGraph       = errors.New("ldpc: unknown base graph")
	ErrLiftingSize     = errors.New("ldpc: unsupported lifting size")
	ErrEncoderType     = errors.New("ldpc: unknown encoder type")
	ErrTable           = errors.New("ldpc: base graph table invalid")
	ErrInputLength     = errors.New("ldpc: input length does not match bgK blocks of the lifting size")
	ErrRateMatchLength = errors.New("ldpc: rate-matched length below the high-rate region")
	ErrClosed          = errors.New("ldpc: encoder closed")
)
