package pos

import "math/bits"

const prngK = 0x517cc1b727220a95

func prngRound(seed uint64, x, y, z int) uint64 {
	h := seed
	h = (bits.RotateLeft64(h, 5) ^ uint64(int64(x))) * prngK
	h = (bits.RotateLeft64(h, 5) ^ uint64(int64(y))) * prngK
	h = (bits.RotateLeft64(h, 5) ^ uint64(int64(z))) * prngK
	return h
}

// Prng выводит детерминированное псевдослучайное число из позиции и сида.
// Результат не зависит от порядка вызовов и стабилен между запусками.
func (p Pos[U]) Prng(seed int32) uint64 {
	return prngRound(prngRound(uint64(int64(seed)), p.X, p.Y, p.Z), p.X, p.Y, p.Z)
}
