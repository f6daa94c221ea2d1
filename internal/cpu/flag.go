package cpu

// VF is the index of the flag register.
const VF = 0xF

// setFlag writes VF. Instructions that produce a flag always write it
// after their result, so VF holds the flag even when it was also the
// destination register.
func (c *CPU) setFlag(set bool) {
	if set {
		c.V[VF] = 1
	} else {
		c.V[VF] = 0
	}
}

// isFlagSet returns true if VF is non-zero.
func (c *CPU) isFlagSet() bool {
	return c.V[VF] != 0
}
