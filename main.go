package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"strings"

	"github.com/thelolagemann/gochip8/internal/chip8"
	"github.com/thelolagemann/gochip8/pkg/audio"
	"github.com/thelolagemann/gochip8/pkg/display"
	_ "github.com/thelolagemann/gochip8/pkg/display/fyne"
	_ "github.com/thelolagemann/gochip8/pkg/display/glfw"
	_ "github.com/thelolagemann/gochip8/pkg/display/sdl"
	_ "github.com/thelolagemann/gochip8/pkg/display/term"
	_ "github.com/thelolagemann/gochip8/pkg/display/web"
	"github.com/thelolagemann/gochip8/pkg/emulator"
	"github.com/thelolagemann/gochip8/pkg/log"
	"github.com/thelolagemann/gochip8/pkg/statsview"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

var (
	_ display.Emulator = &chip8.Chip8{}
)

func main() {
	romFile := flag.String("rom", "", "The rom file to load, may also be given as the first argument")
	ask := flag.Bool("ask", false, "Ask for a rom file when none is given")
	state := flag.String("state", "", "The state file to load")
	saves := flag.String("saves", emulator.SaveFolder, "The folder save states are written to")
	displayDriver := flag.String("driver", "sdl", "The display driver to use. Can be auto, "+strings.Join(display.Names(), ", "))
	speed := flag.Float64("speed", 1, "The speed to run the emulator at")
	ipt := flag.Int("ipt", chip8.DefaultInstructionsPerTick, "Instructions executed per 60Hz tick")
	indexFlag := flag.Bool("index-flag", true, "Set VF when FX1E moves the index past 0xFFF")
	mute := flag.Bool("mute", false, "Disable sound")
	beep := flag.String("beep", "", "A WAV file to play instead of the square wave")
	debug := flag.Bool("debug", false, "Enable debug logging")
	trace := flag.Bool("trace", false, "Log every executed instruction")
	pprofAddr := flag.String("pprof", "", "Serve net/http/pprof on this address")
	stats := flag.Bool("statsview", false, "Serve runtime statistics on "+statsview.Address)

	display.RegisterFlags()
	flag.Parse()

	level := log.InfoLevel
	if *debug || *trace {
		level = log.DebugLevel
	}
	logger := log.NewWithLevel(os.Stderr, level)

	if len(display.InstalledDrivers) == 0 {
		logger.Fatal("No display drivers installed. Please compile with at least one display driver")
	}

	// start pprof
	if *pprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				logger.Errorf("pprof: %v", err)
			}
		}()
	}

	if *stats {
		statsview.Launch(logger)
	}

	path := *romFile
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" && *ask {
		var err error
		if path, err = utils.AskForFile("Open ROM", "."); err != nil {
			logger.Fatal(fmt.Sprintf("unable to open rom: %v", err))
		}
	}
	if path == "" {
		logger.Fatal("no rom given, usage: gochip8 [flags] <rom>")
	}

	rom, err := utils.LoadFile(path)
	if err != nil {
		logger.Fatal(fmt.Sprintf("unable to load %s: %v", path, err))
	}

	opts := []chip8.Opt{
		chip8.WithLogger(logger),
		chip8.WithTitle("gochip8 - " + filepath.Base(path)),
		chip8.WithSaveFolder(*saves),
		chip8.Speed(utils.Clamp(display.MinSpeed, *speed, display.MaxSpeed)),
		chip8.InstructionsPerTick(*ipt),
		chip8.IndexOverflowFlag(*indexFlag),
	}
	if *trace {
		opts = append(opts, chip8.Debug())
	}
	if *state != "" {
		b, err := emulator.ReadState(*state)
		if err != nil {
			logger.Fatal(fmt.Sprintf("unable to read state %s: %v", *state, err))
		}
		opts = append(opts, chip8.WithState(b))
	}

	c, err := chip8.New(rom, opts...)
	if err != nil {
		logger.Fatal(err.Error())
	}
	logger.Infof("loaded %s (%d bytes)", path, len(rom))

	if !*mute {
		if beeper, err := audio.OpenAudio(); err != nil {
			logger.Errorf("unable to open audio device %s", err)
		} else {
			defer beeper.Close()
			if *beep != "" {
				if tone, err := loadTone(*beep); err != nil {
					logger.Errorf("unable to load %s: %v", *beep, err)
				} else {
					beeper.SetTone(tone)
				}
			}
			c.AttachSoundListener(beeper.Beep)
		}
	}

	driver := display.GetDriver(*displayDriver)

	// check to make sure the driver is valid
	if driver == nil {
		logger.Fatal(fmt.Sprintf("invalid display driver %q", *displayDriver))
	}

	// run until the driver exits, a fault ends the process with an error
	if err := c.Run(driver); err != nil {
		logger.Fatal(err.Error())
	}
}

func loadTone(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return audio.LoadSample(f)
}
