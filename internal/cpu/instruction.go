package cpu

import "fmt"

// Op identifies one of the instructions of the CHIP-8. The set is
// closed: Decode only ever produces these values, and Execute
// handles every one of them.
type Op uint8

const (
	OpNoop                 Op = iota // unrecognised opcode
	OpClearScreen                    // 00E0
	OpReturn                         // 00EE
	OpJump                           // 1NNN
	OpCall                           // 2NNN
	OpSkipEqualByte                  // 3XNN
	OpSkipNotEqualByte               // 4XNN
	OpSkipEqualRegister              // 5XY0
	OpLoadByte                       // 6XNN
	OpAddByte                        // 7XNN
	OpLoadRegister                   // 8XY0
	OpOr                             // 8XY1
	OpAnd                            // 8XY2
	OpXor                            // 8XY3
	OpAddRegister                    // 8XY4
	OpSub                            // 8XY5
	OpShiftRight                     // 8XY6
	OpSubReverse                     // 8XY7
	OpShiftLeft                      // 8XYE
	OpSkipNotEqualRegister           // 9XY0
	OpLoadIndex                      // ANNN
	OpJumpV0                         // BNNN
	OpRandom                         // CXNN
	OpDraw                           // DXYN
	OpSkipKeyPressed                 // EX9E
	OpSkipKeyNotPressed              // EXA1
	OpLoadDelay                      // FX07
	OpWaitKey                        // FX0A
	OpSetDelay                       // FX15
	OpSetSound                       // FX18
	OpAddIndex                       // FX1E
	OpLoadFont                       // FX29
	OpStoreBCD                       // FX33
	OpStoreRegisters                 // FX55
	OpLoadRegisters                  // FX65

	opCount
)

var opNames = [opCount]string{
	OpNoop:                 "Noop",
	OpClearScreen:          "ClearScreen",
	OpReturn:               "Return",
	OpJump:                 "Jump",
	OpCall:                 "Call",
	OpSkipEqualByte:        "SkipEqualByte",
	OpSkipNotEqualByte:     "SkipNotEqualByte",
	OpSkipEqualRegister:    "SkipEqualRegister",
	OpLoadByte:             "LoadByte",
	OpAddByte:              "AddByte",
	OpLoadRegister:         "LoadRegister",
	OpOr:                   "Or",
	OpAnd:                  "And",
	OpXor:                  "Xor",
	OpAddRegister:          "AddRegister",
	OpSub:                  "Sub",
	OpShiftRight:           "ShiftRight",
	OpSubReverse:           "SubReverse",
	OpShiftLeft:            "ShiftLeft",
	OpSkipNotEqualRegister: "SkipNotEqualRegister",
	OpLoadIndex:            "LoadIndex",
	OpJumpV0:               "JumpV0",
	OpRandom:               "Random",
	OpDraw:                 "Draw",
	OpSkipKeyPressed:       "SkipKeyPressed",
	OpSkipKeyNotPressed:    "SkipKeyNotPressed",
	OpLoadDelay:            "LoadDelay",
	OpWaitKey:              "WaitKey",
	OpSetDelay:             "SetDelay",
	OpSetSound:             "SetSound",
	OpAddIndex:             "AddIndex",
	OpLoadFont:             "LoadFont",
	OpStoreBCD:             "StoreBCD",
	OpStoreRegisters:       "StoreRegisters",
	OpLoadRegisters:        "LoadRegisters",
}

func (o Op) String() string {
	if o < opCount {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Instruction is a decoded opcode. Only the operands used by Op
// are populated; the rest are left zero.
type Instruction struct {
	Op     Op
	Opcode uint16 // the raw opcode the instruction was decoded from

	X   uint8  // register, bits 8-11
	Y   uint8  // register, bits 4-7
	NNN uint16 // address, bits 0-11
	NN  uint8  // byte, bits 0-7
	N   uint8  // nibble, bits 0-3
}

// String returns the instruction in the conventional assembly
// syntax, e.g. "LD VA, $3F".
func (i Instruction) String() string {
	switch i.Op {
	case OpClearScreen:
		return "CLS"
	case OpReturn:
		return "RET"
	case OpJump:
		return fmt.Sprintf("JP $%03X", i.NNN)
	case OpCall:
		return fmt.Sprintf("CALL $%03X", i.NNN)
	case OpSkipEqualByte:
		return fmt.Sprintf("SE V%X, $%02X", i.X, i.NN)
	case OpSkipNotEqualByte:
		return fmt.Sprintf("SNE V%X, $%02X", i.X, i.NN)
	case OpSkipEqualRegister:
		return fmt.Sprintf("SE V%X, V%X", i.X, i.Y)
	case OpLoadByte:
		return fmt.Sprintf("LD V%X, $%02X", i.X, i.NN)
	case OpAddByte:
		return fmt.Sprintf("ADD V%X, $%02X", i.X, i.NN)
	case OpLoadRegister:
		return fmt.Sprintf("LD V%X, V%X", i.X, i.Y)
	case OpOr:
		return fmt.Sprintf("OR V%X, V%X", i.X, i.Y)
	case OpAnd:
		return fmt.Sprintf("AND V%X, V%X", i.X, i.Y)
	case OpXor:
		return fmt.Sprintf("XOR V%X, V%X", i.X, i.Y)
	case OpAddRegister:
		return fmt.Sprintf("ADD V%X, V%X", i.X, i.Y)
	case OpSub:
		return fmt.Sprintf("SUB V%X, V%X", i.X, i.Y)
	case OpShiftRight:
		return fmt.Sprintf("SHR V%X", i.X)
	case OpSubReverse:
		return fmt.Sprintf("SUBN V%X, V%X", i.X, i.Y)
	case OpShiftLeft:
		return fmt.Sprintf("SHL V%X", i.X)
	case OpSkipNotEqualRegister:
		return fmt.Sprintf("SNE V%X, V%X", i.X, i.Y)
	case OpLoadIndex:
		return fmt.Sprintf("LD I, $%03X", i.NNN)
	case OpJumpV0:
		return fmt.Sprintf("JP V0, $%03X", i.NNN)
	case OpRandom:
		return fmt.Sprintf("RND V%X, $%02X", i.X, i.NN)
	case OpDraw:
		return fmt.Sprintf("DRW V%X, V%X, $%X", i.X, i.Y, i.N)
	case OpSkipKeyPressed:
		return fmt.Sprintf("SKP V%X", i.X)
	case OpSkipKeyNotPressed:
		return fmt.Sprintf("SKNP V%X", i.X)
	case OpLoadDelay:
		return fmt.Sprintf("LD V%X, DT", i.X)
	case OpWaitKey:
		return fmt.Sprintf("LD V%X, K", i.X)
	case OpSetDelay:
		return fmt.Sprintf("LD DT, V%X", i.X)
	case OpSetSound:
		return fmt.Sprintf("LD ST, V%X", i.X)
	case OpAddIndex:
		return fmt.Sprintf("ADD I, V%X", i.X)
	case OpLoadFont:
		return fmt.Sprintf("LD F, V%X", i.X)
	case OpStoreBCD:
		return fmt.Sprintf("LD B, V%X", i.X)
	case OpStoreRegisters:
		return fmt.Sprintf("LD [I], V%X", i.X)
	case OpLoadRegisters:
		return fmt.Sprintf("LD V%X, [I]", i.X)
	}
	return fmt.Sprintf("NOP ; $%04X", i.Opcode)
}

// IsJump reports whether the instruction unconditionally transfers
// control without returning.
func (i Instruction) IsJump() bool {
	return i.Op == OpJump || i.Op == OpJumpV0
}

// IsSkip reports whether the instruction may skip the next one.
func (i Instruction) IsSkip() bool {
	switch i.Op {
	case OpSkipEqualByte, OpSkipNotEqualByte, OpSkipEqualRegister,
		OpSkipNotEqualRegister, OpSkipKeyPressed, OpSkipKeyNotPressed:
		return true
	}
	return false
}
