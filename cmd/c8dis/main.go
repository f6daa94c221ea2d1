// Command c8dis prints a linear disassembly of a CHIP-8 ROM.
//
//	c8dis [-origin 0x200] rom.ch8
//
// Every two bytes are decoded as an instruction, whether or not the
// program ever executes them. Instructions that may be skipped are
// indented, and a blank line follows every jump or return.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/thelolagemann/gochip8/internal/cpu"
	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/pkg/log"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

func main() {
	origin := flag.Uint("origin", mmu.ProgramStart, "Address the rom is loaded at")
	flag.Parse()

	logger := log.New()
	if flag.NArg() != 1 {
		logger.Fatal("usage: c8dis [-origin addr] <rom>")
	}

	rom, err := utils.LoadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal(err.Error())
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	if err := disassemble(out, rom, uint16(*origin)); err != nil {
		logger.Fatal(err.Error())
	}
}

// disassemble writes one line per instruction of rom to w, addressed
// from origin. A trailing odd byte is written as data.
func disassemble(w io.Writer, rom []byte, origin uint16) error {
	skipped := false
	for i := 0; i+1 < len(rom); i += 2 {
		opcode := uint16(rom[i])<<8 | uint16(rom[i+1])
		in := cpu.Decode(opcode)

		indent := ""
		if skipped {
			indent = "  "
		}
		if _, err := fmt.Fprintf(w, "%03X  %04X  %s%s\n", origin+uint16(i), opcode, indent, in); err != nil {
			return err
		}

		skipped = in.IsSkip()
		if in.IsJump() || in.Op == cpu.OpReturn {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}

	if len(rom)%2 == 1 {
		last := len(rom) - 1
		_, err := fmt.Fprintf(w, "%03X  %02X    DB $%02X\n", origin+uint16(last), rom[last], rom[last])
		return err
	}
	return nil
}
