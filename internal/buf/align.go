package buf

import "golang.org/x/exp/constraints"

// ChunkAlignment is the boundary every chunk header starts on, relative to the
// payload start of its parent.
const ChunkAlignment = 4

// AlignUp rounds n up to the next multiple of to. to must be a power of two.
//
//	AlignUp(0, 4) = 0
//	AlignUp(3, 4) = 4
//	AlignUp(8, 4) = 8
func AlignUp[T constraints.Integer](n, to T) T {
	return (n + to - 1) &^ (to - 1)
}

// Align4 rounds n up to the next multiple of ChunkAlignment.
func Align4[T constraints.Integer](n T) T {
	return AlignUp(n, T(ChunkAlignment))
}

// Padding returns the number of zero bytes needed after n bytes to reach the
// next multiple of ChunkAlignment; always in [0, 3].
func Padding[T constraints.Integer](n T) T {
	return Align4(n) - n
}
