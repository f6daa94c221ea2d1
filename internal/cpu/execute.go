package cpu

import (
	"fmt"
	"math"

	"github.com/thelolagemann/gochip8/internal/mmu"
)

// Execute executes a decoded instruction. PC is only advanced once
// the instruction has completed; on error the machine state is left
// as it was before the instruction.
func (c *CPU) Execute(in Instruction) error {
	next := c.PC + 2

	switch in.Op {
	case OpNoop:
	case OpClearScreen:
		c.video.Clear()
	case OpReturn:
		addr, err := c.pop()
		if err != nil {
			return err
		}
		next = addr
	case OpJump:
		next = in.NNN
	case OpCall:
		if err := c.push(next); err != nil {
			return err
		}
		next = in.NNN
	case OpJumpV0:
		next = in.NNN + uint16(c.V[0])

	case OpSkipEqualByte:
		if c.V[in.X] == in.NN {
			next += 2
		}
	case OpSkipNotEqualByte:
		if c.V[in.X] != in.NN {
			next += 2
		}
	case OpSkipEqualRegister:
		if c.V[in.X] == c.V[in.Y] {
			next += 2
		}
	case OpSkipNotEqualRegister:
		if c.V[in.X] != c.V[in.Y] {
			next += 2
		}
	case OpSkipKeyPressed:
		if c.keypad.Pressed(c.V[in.X]) {
			next += 2
		}
	case OpSkipKeyNotPressed:
		if !c.keypad.Pressed(c.V[in.X]) {
			next += 2
		}

	case OpLoadByte:
		c.V[in.X] = in.NN
	case OpAddByte:
		c.V[in.X] += in.NN
	case OpLoadRegister:
		c.V[in.X] = c.V[in.Y]
	case OpLoadIndex:
		c.I = in.NNN

	case OpOr:
		c.V[in.X] |= c.V[in.Y]
	case OpAnd:
		c.V[in.X] &= c.V[in.Y]
	case OpXor:
		c.V[in.X] ^= c.V[in.Y]
	case OpAddRegister:
		sum := uint16(c.V[in.X]) + uint16(c.V[in.Y])
		c.V[in.X] = uint8(sum)
		c.setFlag(sum > 0xFF)
	case OpSub:
		vx, vy := c.V[in.X], c.V[in.Y]
		c.V[in.X] = vx - vy
		c.setFlag(vx >= vy)
	case OpSubReverse:
		vx, vy := c.V[in.X], c.V[in.Y]
		c.V[in.X] = vy - vx
		c.setFlag(vy >= vx)
	case OpShiftRight:
		vx := c.V[in.X]
		c.V[in.X] = vx >> 1
		c.setFlag(vx&0x01 != 0)
	case OpShiftLeft:
		vx := c.V[in.X]
		c.V[in.X] = vx << 1
		c.setFlag(vx&0x80 != 0)

	case OpRandom:
		c.V[in.X] = c.Rand() & in.NN
	case OpDraw:
		sprite, err := c.mmu.Slice(c.I, int(in.N))
		if err != nil {
			return err
		}
		c.setFlag(c.video.Draw(c.V[in.X], c.V[in.Y], sprite))

	case OpLoadDelay:
		c.V[in.X] = c.timer.Delay
	case OpWaitKey:
		k, ok := c.keypad.FirstPressed()
		if !ok {
			// poll again next step
			next = c.PC
			break
		}
		c.V[in.X] = k
	case OpSetDelay:
		c.timer.Delay = c.V[in.X]
	case OpSetSound:
		c.timer.SetSound(c.V[in.X])

	case OpAddIndex:
		i := int(c.I) + int(c.V[in.X])
		if i > math.MaxUint16 {
			return ErrIndexOverflow
		}
		if c.IndexOverflowFlag {
			c.setFlag(i >= mmu.Size)
		}
		c.I = uint16(i)
	case OpLoadFont:
		c.I = mmu.GlyphAddress(c.V[in.X])
	case OpStoreBCD:
		dst, err := c.mmu.Slice(c.I, 3)
		if err != nil {
			return err
		}
		v := c.V[in.X]
		dst[0], dst[1], dst[2] = v/100, v/10%10, v%10
	case OpStoreRegisters:
		dst, err := c.mmu.Slice(c.I, int(in.X)+1)
		if err != nil {
			return err
		}
		copy(dst, c.V[:in.X+1])
	case OpLoadRegisters:
		src, err := c.mmu.Slice(c.I, int(in.X)+1)
		if err != nil {
			return err
		}
		copy(c.V[:in.X+1], src)

	default:
		return fmt.Errorf("%w: %s", errUnhandledOp, in.Op)
	}

	c.PC = next
	return nil
}
