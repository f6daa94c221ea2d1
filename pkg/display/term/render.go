package term

import (
	"strings"

	"github.com/thelolagemann/gochip8/internal/video"
)

const (
	home        = "\x1b[H"
	clearScreen = "\x1b[2J"
	clearLine   = "\x1b[K"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// halfBlocks is indexed by top pixel | bottom pixel << 1.
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// render draws an RGB frame as text, each character covering two
// rows, followed by a status line.
func render(frame []byte, title, fault string) string {
	var b strings.Builder
	b.Grow(video.ScreenWidth * video.ScreenHeight * 2)

	b.WriteString(home)
	for y := 0; y < video.ScreenHeight; y += 2 {
		for x := 0; x < video.ScreenWidth; x++ {
			b.WriteString(halfBlocks[lit(frame, x, y)|lit(frame, x, y+1)<<1])
		}
		b.WriteString("\r\n")
	}

	b.WriteString(title)
	if fault != "" {
		b.WriteString(" | " + fault)
	}
	b.WriteString(clearLine)
	return b.String()
}

func lit(frame []byte, x, y int) int {
	if frame[(y*video.ScreenWidth+x)*3] != video.Off[0] {
		return 1
	}
	return 0
}
