package accel

import "fmt"

// Register names a transaction-scoped register of the arbiter.
type Register int

// The registers a transaction can write.
const (
	RegBatchItems Register = iota
	RegLearningRate
	RegWeightDecayLambda
	numRegisters
)

var registerWidths = [numRegisters]uint{
	RegBatchItems:        16,
	RegLearningRate:      16,
	RegWeightDecayLambda: 16,
}

var registerNames = [numRegisters]string{
	RegBatchItems:        "batch_items",
	RegLearningRate:      "learning_rate",
	RegWeightDecayLambda: "weight_decay_lambda",
}

// Valid tells if the register exists.
func (r Register) Valid() bool {
	return r >= 0 && r < numRegisters
}

// Width returns the number of meaningful bits.
func (r Register) Width() uint {
	if !r.Valid() {
		panic(fmt.Sprintf("unknown register %d", int(r)))
	}

	return registerWidths[r]
}

// Truncate keeps the low-order bits that fit the register. Higher bits are
// dropped, never rejected.
func (r Register) Truncate(value uint32) uint32 {
	width := r.Width()
	if width >= 32 {
		return value
	}

	return value & (1<<width - 1)
}

func (r Register) String() string {
	if !r.Valid() {
		return fmt.Sprintf("register(%d)", int(r))
	}

	return registerNames[r]
}

// ParseRegister looks a register up by name.
func ParseRegister(name string) (Register, error) {
	for r := Register(0); r < numRegisters; r++ {
		if registerNames[r] == name {
			return r, nil
		}
	}

	return 0, fmt.Errorf("unknown register %q", name)
}
