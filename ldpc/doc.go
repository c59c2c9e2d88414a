// Package ldpc implements the NR quasi-cyclic LDPC encoder: both base
// graphs, all 51 lifting sizes, and rate matching by truncation of the
// parity extension.
//
// Codewords are produced by back-substitution instead of a generator
// matrix: the high-rate core is solved by one of four closed-form kernels
// picked by base graph and lifting-size set, and the remaining parity
// blocks follow row by row. Inputs and outputs carry one bit per byte;
// the two punctured systematic blocks are expected in the input and
// absent from the output.
package ldpc
