package membench

// Seed starts every random-pattern case so runs are reproducible.
const Seed = 0xDEADBEEF

// LCG is the linear-congruential generator behind the random access
// patterns. Callers mask its output with sizeWords-1, which is why every
// configured size must be a power of two.
type LCG uint32

func NewLCG() LCG {
	return LCG(Seed)
}

func (l *LCG) Next() uint32 {
	*l = *l*1103515245 + 12345
	return uint32(*l)
}
