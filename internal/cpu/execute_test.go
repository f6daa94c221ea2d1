package cpu

import (
	"errors"
	"testing"

	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/internal/timer"
	"github.com/thelolagemann/gochip8/internal/video"
)

func newTestCPU() *CPU {
	return NewCPU(mmu.NewMMU(), video.New(), keypad.New(), timer.NewController(), nil)
}

// testInstruction decodes opcode and runs fn against a fresh CPU.
func testInstruction(t *testing.T, name string, opcode uint16, fn func(t *testing.T, c *CPU, instr Instruction)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		fn(t, newTestCPU(), Decode(opcode))
	})
}

func mustExecute(t *testing.T, c *CPU, instr Instruction) {
	t.Helper()
	if err := c.Execute(instr); err != nil {
		t.Fatalf("Expected %s to execute, got %v", instr, err)
	}
}

func TestInstruction_Arithmetic(t *testing.T) {
	testInstruction(t, "ADD V1, V2 overflow", 0x8124, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0xFF, 0x01
		mustExecute(t, c, instr)
		if c.V[1] != 0x00 {
			t.Errorf("Expected V1 to be 0x00, got 0x%02X", c.V[1])
		}
		if !c.isFlagSet() {
			t.Errorf("Expected VF to be set")
		}
	})
	testInstruction(t, "ADD V1, V2", 0x8124, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2], c.V[VF] = 0x10, 0x20, 1
		mustExecute(t, c, instr)
		if c.V[1] != 0x30 || c.isFlagSet() {
			t.Errorf("Expected V1=0x30 VF=0, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "SUB V1, V2", 0x8125, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0x05, 0x03
		mustExecute(t, c, instr)
		if c.V[1] != 0x02 || !c.isFlagSet() {
			t.Errorf("Expected V1=0x02 VF=1, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "SUB V1, V2 borrow", 0x8125, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0x03, 0x05
		mustExecute(t, c, instr)
		if c.V[1] != 0xFE || c.isFlagSet() {
			t.Errorf("Expected V1=0xFE VF=0, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "SUBN V1, V2", 0x8127, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0x03, 0x05
		mustExecute(t, c, instr)
		if c.V[1] != 0x02 || !c.isFlagSet() {
			t.Errorf("Expected V1=0x02 VF=1, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "ADD V3, $02 wraps without flag", 0x7302, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[3] = 0xFF
		mustExecute(t, c, instr)
		if c.V[3] != 0x01 || c.isFlagSet() {
			t.Errorf("Expected V3=0x01 VF=0, got V3=0x%02X VF=%d", c.V[3], c.V[VF])
		}
	})
	testInstruction(t, "ADD VF, VF keeps flag", 0x8FF4, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[VF] = 0x80
		mustExecute(t, c, instr)
		if c.V[VF] != 1 {
			t.Errorf("Expected VF to hold the carry, got 0x%02X", c.V[VF])
		}
	})
}

func TestInstruction_Logic(t *testing.T) {
	testInstruction(t, "OR V1, V2", 0x8121, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0xF0, 0x0F
		mustExecute(t, c, instr)
		if c.V[1] != 0xFF {
			t.Errorf("Expected V1 to be 0xFF, got 0x%02X", c.V[1])
		}
	})
	testInstruction(t, "AND V1, V2", 0x8122, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0xF3, 0x0F
		mustExecute(t, c, instr)
		if c.V[1] != 0x03 {
			t.Errorf("Expected V1 to be 0x03, got 0x%02X", c.V[1])
		}
	})
	testInstruction(t, "XOR V1, V2", 0x8123, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.V[2] = 0xFF, 0x0F
		mustExecute(t, c, instr)
		if c.V[1] != 0xF0 {
			t.Errorf("Expected V1 to be 0xF0, got 0x%02X", c.V[1])
		}
	})
	testInstruction(t, "SHL V1", 0x812E, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1] = 0b1000_0001
		mustExecute(t, c, instr)
		if c.V[1] != 0b0000_0010 || !c.isFlagSet() {
			t.Errorf("Expected V1=0x02 VF=1, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "SHR V1", 0x8126, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1] = 0b0000_0011
		mustExecute(t, c, instr)
		if c.V[1] != 0b0000_0001 || !c.isFlagSet() {
			t.Errorf("Expected V1=0x01 VF=1, got V1=0x%02X VF=%d", c.V[1], c.V[VF])
		}
	})
	testInstruction(t, "RND V5, $0F", 0xC50F, func(t *testing.T, c *CPU, instr Instruction) {
		c.Rand = func() uint8 { return 0xAB }
		mustExecute(t, c, instr)
		if c.V[5] != 0x0B {
			t.Errorf("Expected V5 to be 0x0B, got 0x%02X", c.V[5])
		}
	})
}

func TestInstruction_Flow(t *testing.T) {
	testInstruction(t, "CALL $300 / RET", 0x2300, func(t *testing.T, c *CPU, instr Instruction) {
		mustExecute(t, c, instr)
		if c.PC != 0x300 {
			t.Errorf("Expected PC to be 0x300, got 0x%03X", c.PC)
		}
		mustExecute(t, c, Decode(0x00EE))
		if c.PC != 0x202 {
			t.Errorf("Expected PC to be 0x202, got 0x%03X", c.PC)
		}
		if len(c.Stack()) != 0 {
			t.Errorf("Expected stack to be empty, got %v", c.Stack())
		}
	})
	testInstruction(t, "RET underflow", 0x00EE, func(t *testing.T, c *CPU, instr Instruction) {
		if err := c.Execute(instr); !errors.Is(err, ErrStackUnderflow) {
			t.Errorf("Expected ErrStackUnderflow, got %v", err)
		}
		if c.PC != 0x200 {
			t.Errorf("Expected PC to be left at 0x200, got 0x%03X", c.PC)
		}
	})
	testInstruction(t, "CALL overflow", 0x2200, func(t *testing.T, c *CPU, instr Instruction) {
		for i := 0; i < StackDepth; i++ {
			mustExecute(t, c, instr)
		}
		if err := c.Execute(instr); !errors.Is(err, ErrStackOverflow) {
			t.Errorf("Expected ErrStackOverflow, got %v", err)
		}
		if len(c.Stack()) != StackDepth {
			t.Errorf("Expected %d return addresses, got %d", StackDepth, len(c.Stack()))
		}
	})
	testInstruction(t, "JP $ABC", 0x1ABC, func(t *testing.T, c *CPU, instr Instruction) {
		mustExecute(t, c, instr)
		if c.PC != 0xABC {
			t.Errorf("Expected PC to be 0xABC, got 0x%03X", c.PC)
		}
	})
	testInstruction(t, "JP V0, $FFF", 0xBFFF, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[0] = 0x10
		mustExecute(t, c, instr)
		if c.PC != 0x100F {
			t.Errorf("Expected PC to be 0x100F, got 0x%03X", c.PC)
		}
		if err := c.Step(); !errors.Is(err, mmu.ErrAddressOutOfRange) {
			t.Errorf("Expected fetch to fail, got %v", err)
		}
	})

	skips := []struct {
		name   string
		opcode uint16
		setup  func(c *CPU)
		skip   bool
	}{
		{"SE V1, $42 equal", 0x3142, func(c *CPU) { c.V[1] = 0x42 }, true},
		{"SE V1, $42 not equal", 0x3142, func(c *CPU) {}, false},
		{"SNE V1, $42", 0x4142, func(c *CPU) {}, true},
		{"SE V1, V2", 0x5120, func(c *CPU) { c.V[1], c.V[2] = 7, 7 }, true},
		{"SNE V1, V2", 0x9120, func(c *CPU) { c.V[1], c.V[2] = 7, 7 }, false},
		{"SKP V1 pressed", 0xE19E, func(c *CPU) { c.V[1] = 0xA; c.keypad.Press(0xA) }, true},
		{"SKP V1 released", 0xE19E, func(c *CPU) { c.V[1] = 0xA }, false},
		{"SKNP V1 released", 0xE1A1, func(c *CPU) { c.V[1] = 0xA }, true},
		{"SKNP V1 pressed", 0xE1A1, func(c *CPU) { c.V[1] = 0xA; c.keypad.Press(0xA) }, false},
	}
	for _, s := range skips {
		s := s
		testInstruction(t, s.name, s.opcode, func(t *testing.T, c *CPU, instr Instruction) {
			s.setup(c)
			mustExecute(t, c, instr)
			want := uint16(0x202)
			if s.skip {
				want = 0x204
			}
			if c.PC != want {
				t.Errorf("Expected PC to be 0x%03X, got 0x%03X", want, c.PC)
			}
		})
	}
}

func TestInstruction_Memory(t *testing.T) {
	testInstruction(t, "LD B, V1", 0xF133, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1], c.I = 0xFF, 0x300
		mustExecute(t, c, instr)
		b, _ := c.mmu.Slice(0x300, 3)
		if b[0] != 2 || b[1] != 5 || b[2] != 5 {
			t.Errorf("Expected BCD 2 5 5, got %v", b)
		}
	})
	testInstruction(t, "LD [I], V3 / LD V3, [I]", 0xF355, func(t *testing.T, c *CPU, instr Instruction) {
		c.I = 0x400
		copy(c.V[:], []uint8{1, 2, 3, 4, 5})
		mustExecute(t, c, instr)

		b, _ := c.mmu.Slice(0x400, 5)
		if b[0] != 1 || b[3] != 4 || b[4] != 0 {
			t.Errorf("Expected V0-V3 to be stored, got %v", b)
		}
		if c.I != 0x400 {
			t.Errorf("Expected I to be unchanged, got 0x%03X", c.I)
		}

		c.V = [16]uint8{}
		mustExecute(t, c, Decode(0xF365))
		if c.V[0] != 1 || c.V[3] != 4 || c.V[4] != 0 {
			t.Errorf("Expected V0-V3 to be loaded, got % X", c.V[:5])
		}
	})
	testInstruction(t, "LD [I], VF out of range", 0xFF55, func(t *testing.T, c *CPU, instr Instruction) {
		c.I = 0xFF8
		if err := c.Execute(instr); !errors.Is(err, mmu.ErrAddressOutOfRange) {
			t.Errorf("Expected ErrAddressOutOfRange, got %v", err)
		}
		if b, _ := c.mmu.Read(0xFF8); b != 0 {
			t.Errorf("Expected memory to be untouched, got 0x%02X", b)
		}
	})
	testInstruction(t, "LD F, V2", 0xF229, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[2] = 0xA
		mustExecute(t, c, instr)
		if c.I != mmu.FontAddress+5*0xA {
			t.Errorf("Expected I to point at glyph A, got 0x%03X", c.I)
		}
	})
	testInstruction(t, "ADD I, V1", 0xF11E, func(t *testing.T, c *CPU, instr Instruction) {
		c.I, c.V[1] = 0xFFF, 0x01
		mustExecute(t, c, instr)
		if c.I != 0x1000 || !c.isFlagSet() {
			t.Errorf("Expected I=0x1000 VF=1, got I=0x%03X VF=%d", c.I, c.V[VF])
		}
	})
	testInstruction(t, "ADD I, V1 without flag", 0xF11E, func(t *testing.T, c *CPU, instr Instruction) {
		c.IndexOverflowFlag = false
		c.I, c.V[1], c.V[VF] = 0xFFF, 0x01, 0x42
		mustExecute(t, c, instr)
		if c.V[VF] != 0x42 {
			t.Errorf("Expected VF to be untouched, got 0x%02X", c.V[VF])
		}
	})
	testInstruction(t, "ADD I, V1 past 0xFFFF", 0xF11E, func(t *testing.T, c *CPU, instr Instruction) {
		c.I, c.V[1], c.V[VF] = 0xFFF0, 0x20, 0x42
		if err := c.Execute(instr); !errors.Is(err, ErrIndexOverflow) {
			t.Fatalf("Expected ErrIndexOverflow, got %v", err)
		}
		if c.I != 0xFFF0 || c.V[VF] != 0x42 || c.PC != mmu.ProgramStart {
			t.Errorf("Expected state to be untouched, got I=0x%04X VF=0x%02X PC=0x%03X", c.I, c.V[VF], c.PC)
		}
	})
	testInstruction(t, "ADD I, V1 up to 0xFFFF", 0xF11E, func(t *testing.T, c *CPU, instr Instruction) {
		c.I, c.V[1] = 0xFFF0, 0x0F
		mustExecute(t, c, instr)
		if c.I != 0xFFFF || !c.isFlagSet() {
			t.Errorf("Expected I=0xFFFF VF=1, got I=0x%04X VF=%d", c.I, c.V[VF])
		}
	})
	testInstruction(t, "LD I, $123", 0xA123, func(t *testing.T, c *CPU, instr Instruction) {
		mustExecute(t, c, instr)
		if c.I != 0x123 {
			t.Errorf("Expected I to be 0x123, got 0x%03X", c.I)
		}
	})
}

func TestInstruction_Display(t *testing.T) {
	testInstruction(t, "DRW V0, V1, $5", 0xD015, func(t *testing.T, c *CPU, instr Instruction) {
		c.I = mmu.GlyphAddress(0)
		mustExecute(t, c, instr)
		if c.isFlagSet() {
			t.Errorf("Expected no collision on first draw")
		}
		if !c.video.Pixel(0, 0) {
			t.Errorf("Expected pixel 0,0 to be set")
		}

		c.PC = 0x200
		mustExecute(t, c, instr)
		if !c.isFlagSet() {
			t.Errorf("Expected collision on second draw")
		}
		if c.video.Pixel(0, 0) {
			t.Errorf("Expected pixel 0,0 to be cleared")
		}
	})
	testInstruction(t, "DRW out of range", 0xD015, func(t *testing.T, c *CPU, instr Instruction) {
		c.I = 0xFFE
		if err := c.Execute(instr); !errors.Is(err, mmu.ErrAddressOutOfRange) {
			t.Errorf("Expected ErrAddressOutOfRange, got %v", err)
		}
	})
	testInstruction(t, "CLS", 0x00E0, func(t *testing.T, c *CPU, instr Instruction) {
		c.video.Draw(0, 0, []byte{0xFF})
		mustExecute(t, c, instr)
		if c.video.Pixel(0, 0) {
			t.Errorf("Expected display to be cleared")
		}
	})
}

func TestInstruction_Timers(t *testing.T) {
	testInstruction(t, "LD DT, V1 / LD V2, DT", 0xF115, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1] = 0x3C
		mustExecute(t, c, instr)
		mustExecute(t, c, Decode(0xF207))
		if c.V[2] != 0x3C {
			t.Errorf("Expected V2 to be 0x3C, got 0x%02X", c.V[2])
		}
	})
	testInstruction(t, "LD ST, V1", 0xF118, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[1] = 2
		mustExecute(t, c, instr)
		if !c.timer.SoundActive() {
			t.Errorf("Expected sound to be active")
		}
	})
	testInstruction(t, "LD V4, K", 0xF40A, func(t *testing.T, c *CPU, instr Instruction) {
		c.V[4] = 0x99
		for i := 0; i < 3; i++ {
			mustExecute(t, c, instr)
			if c.PC != 0x200 || c.V[4] != 0x99 {
				t.Fatalf("Expected key-wait to stall, got PC=0x%03X V4=0x%02X", c.PC, c.V[4])
			}
		}
		c.keypad.Press(0xE)
		c.keypad.Press(0x7)
		mustExecute(t, c, instr)
		if c.PC != 0x202 || c.V[4] != 0x7 {
			t.Errorf("Expected PC=0x202 V4=0x07, got PC=0x%03X V4=0x%02X", c.PC, c.V[4])
		}
	})
}

func TestCPU_Step(t *testing.T) {
	c := newTestCPU()
	if err := c.mmu.LoadROM([]byte{0x6A, 0x3F, 0x00, 0xEE}); err != nil {
		t.Fatal(err)
	}

	if err := c.Step(); err != nil {
		t.Fatalf("Expected first step to succeed, got %v", err)
	}
	if c.V[0xA] != 0x3F || c.PC != 0x202 {
		t.Errorf("Expected VA=0x3F PC=0x202, got VA=0x%02X PC=0x%03X", c.V[0xA], c.PC)
	}

	err := c.Step()
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("Expected a *Fault, got %v", err)
	}
	if fault.PC != 0x202 || fault.Opcode != 0x00EE {
		t.Errorf("Expected fault at 0x202 for 0x00EE, got 0x%03X 0x%04X", fault.PC, fault.Opcode)
	}
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Expected ErrStackUnderflow, got %v", err)
	}
}

func TestCPU_StepFetchOutOfRange(t *testing.T) {
	c := newTestCPU()
	c.PC = 0xFFF

	var fault *Fault
	if err := c.Step(); !errors.As(err, &fault) || !fault.Fetch {
		t.Fatalf("Expected fetch fault, got %v", err)
	}
}

// TestCPU_Execute_AllOps checks that every op is handled by Execute.
func TestCPU_Execute_AllOps(t *testing.T) {
	for op := Op(0); op < opCount; op++ {
		c := newTestCPU()
		c.I = 0x300
		c.keypad.Press(0)
		if op == OpReturn {
			c.push(0x200)
		}
		if err := c.Execute(Instruction{Op: op}); err != nil {
			t.Errorf("Expected %s to execute, got %v", op, err)
		}
	}
}
