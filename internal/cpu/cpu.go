package cpu

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/internal/timer"
	"github.com/thelolagemann/gochip8/internal/types"
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/log"
)

// StackDepth is the number of return addresses the stack can hold.
const StackDepth = 16

var (
	// ErrStackUnderflow is returned when returning with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrStackOverflow is returned when calling with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrIndexOverflow is returned when FX1E would carry I past 0xFFFF.
	ErrIndexOverflow = errors.New("index overflow")

	errUnhandledOp = errors.New("unhandled op")
)

// Fault is returned by Step when an instruction cannot be fetched or
// executed. The machine should be considered halted once a Fault has
// been returned.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16 // zero if the fetch itself failed
	Fetch  bool
	Err    error
}

func (f *Fault) Error() string {
	if f.Fetch {
		return fmt.Sprintf("fetch at 0x%03X: %v", f.PC, f.Err)
	}
	return fmt.Sprintf("0x%04X at 0x%03X (%s): %v", f.Opcode, f.PC, Decode(f.Opcode), f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// CPU represents the CHIP-8 interpreter core. It owns the registers,
// the index, the program counter and the call stack, and executes
// instructions against the memory, display, keypad and timers.
type CPU struct {
	// V holds the general purpose registers V0 - VF.
	V [16]uint8
	// I is the index register.
	I uint16
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16

	stack [StackDepth]uint16
	sp    uint8

	// IndexOverflowFlag controls whether FX1E sets VF when I
	// leaves the address space.
	IndexOverflowFlag bool
	// Rand is the source for CXNN.
	Rand func() uint8

	// Debug logs every executed instruction.
	Debug bool
	log   log.Logger

	mmu    *mmu.MMU
	video  *video.Framebuffer
	keypad *keypad.State
	timer  *timer.Controller
}

// NewCPU creates a new CPU attached to the given components.
func NewCPU(mmu *mmu.MMU, video *video.Framebuffer, keypad *keypad.State, timer *timer.Controller, logger log.Logger) *CPU {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	c := &CPU{
		IndexOverflowFlag: true,
		Rand:              func() uint8 { return uint8(rand.Intn(256)) },
		log:               logger,
		mmu:               mmu,
		video:             video,
		keypad:            keypad,
		timer:             timer,
	}
	c.Reset()
	return c
}

// SetLogger sets the logger used for tracing.
func (c *CPU) SetLogger(l log.Logger) {
	c.log = l
}

// Reset clears the registers and the stack and points PC at the
// start of the program.
func (c *CPU) Reset() {
	c.V = [16]uint8{}
	c.I = 0
	c.PC = mmu.ProgramStart
	c.stack = [StackDepth]uint16{}
	c.sp = 0
}

// Stack returns the return addresses currently on the stack, oldest first.
func (c *CPU) Stack() []uint16 {
	s := make([]uint16, c.sp)
	copy(s, c.stack[:c.sp])
	return s
}

// Step fetches, decodes and executes a single instruction. Any
// error is a *Fault.
func (c *CPU) Step() error {
	pc := c.PC
	opcode, err := c.mmu.Read16(pc)
	if err != nil {
		return &Fault{PC: pc, Fetch: true, Err: err}
	}

	instr := Decode(opcode)
	if c.Debug {
		c.log.Debugf("%03X  %04X  %-16s I=%03X V=% X", pc, opcode, instr, c.I, c.V[:])
	}

	if err := c.Execute(instr); err != nil {
		return &Fault{PC: pc, Opcode: opcode, Err: err}
	}
	return nil
}

func (c *CPU) push(address uint16) error {
	if int(c.sp) >= StackDepth {
		return ErrStackOverflow
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

var _ types.Stater = (*CPU)(nil)

func (c *CPU) Load(s *types.State) {
	s.ReadData(c.V[:])
	c.I = s.Read16()
	c.PC = s.Read16()
	for i := range c.stack {
		c.stack[i] = s.Read16()
	}
	c.sp = s.Read8()
	if int(c.sp) > StackDepth {
		c.sp = StackDepth
	}
}

func (c *CPU) Save(s *types.State) {
	s.WriteData(c.V[:])
	s.Write16(c.I)
	s.Write16(c.PC)
	for _, a := range c.stack {
		s.Write16(a)
	}
	s.Write8(c.sp)
}
