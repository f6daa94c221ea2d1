package cpu

// Decode maps a 16-bit opcode to an Instruction. Every value decodes
// to something; unrecognised bit patterns decode to OpNoop.
func Decode(opcode uint16) Instruction {
	x := uint8(opcode & 0x0F00 >> 8)
	y := uint8(opcode & 0x00F0 >> 4)
	nnn := opcode & 0x0FFF
	nn := uint8(opcode & 0x00FF)
	n := uint8(opcode & 0x000F)

	in := Instruction{Opcode: opcode}
	switch opcode & 0xF000 {
	case 0x0000:
		switch nn {
		case 0xE0:
			in.Op = OpClearScreen
		case 0xEE:
			in.Op = OpReturn
		}
	case 0x1000:
		in.Op, in.NNN = OpJump, nnn
	case 0x2000:
		in.Op, in.NNN = OpCall, nnn
	case 0x3000:
		in.Op, in.X, in.NN = OpSkipEqualByte, x, nn
	case 0x4000:
		in.Op, in.X, in.NN = OpSkipNotEqualByte, x, nn
	case 0x5000:
		in.Op, in.X, in.Y = OpSkipEqualRegister, x, y
	case 0x6000:
		in.Op, in.X, in.NN = OpLoadByte, x, nn
	case 0x7000:
		in.Op, in.X, in.NN = OpAddByte, x, nn
	case 0x8000:
		in.X, in.Y = x, y
		switch n {
		case 0x0:
			in.Op = OpLoadRegister
		case 0x1:
			in.Op = OpOr
		case 0x2:
			in.Op = OpAnd
		case 0x3:
			in.Op = OpXor
		case 0x4:
			in.Op = OpAddRegister
		case 0x5:
			in.Op = OpSub
		case 0x6:
			in.Op, in.Y = OpShiftRight, 0
		case 0x7:
			in.Op = OpSubReverse
		case 0xE:
			in.Op, in.Y = OpShiftLeft, 0
		default:
			in.X, in.Y = 0, 0
		}
	case 0x9000:
		in.Op, in.X, in.Y = OpSkipNotEqualRegister, x, y
	case 0xA000:
		in.Op, in.NNN = OpLoadIndex, nnn
	case 0xB000:
		in.Op, in.NNN = OpJumpV0, nnn
	case 0xC000:
		in.Op, in.X, in.NN = OpRandom, x, nn
	case 0xD000:
		in.Op, in.X, in.Y, in.N = OpDraw, x, y, n
	case 0xE000:
		switch nn {
		case 0x9E:
			in.Op, in.X = OpSkipKeyPressed, x
		case 0xA1:
			in.Op, in.X = OpSkipKeyNotPressed, x
		}
	case 0xF000:
		in.X = x
		switch nn {
		case 0x07:
			in.Op = OpLoadDelay
		case 0x0A:
			in.Op = OpWaitKey
		case 0x15:
			in.Op = OpSetDelay
		case 0x18:
			in.Op = OpSetSound
		case 0x1E:
			in.Op = OpAddIndex
		case 0x29:
			in.Op = OpLoadFont
		case 0x33:
			in.Op = OpStoreBCD
		case 0x55:
			in.Op = OpStoreRegisters
		case 0x65:
			in.Op = OpLoadRegisters
		default:
			in.X = 0
		}
	}
	return in
}
