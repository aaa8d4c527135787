package params

// These are the multipliers for SYN denominations.
// Example: To get the base-unit value of an amount in 'mSyn', use
//
//	new(big.Int).Mul(value, big.NewInt(params.MSyn))
const (
	Base = 1
	MSyn = 1e6
	Syn  = 1e9
)
