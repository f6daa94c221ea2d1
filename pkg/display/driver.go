package display

import (
	"flag"
	"fmt"
	"sort"
	"strconv"

	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/emulator"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

// Driver is the interface that wraps the basic methods for a
// display driver.
type Driver interface {
	// Initialize initializes the display driver by attaching it to
	// the emulator that is using it.
	Initialize(emu Emulator)
	// Start the display driver.
	Start(fb <-chan []byte, events <-chan event.Event, pressed, released chan<- keypad.Key) error
	// Stop the display driver.
	Stop() error
}

// Emulator is the interface that wraps the basic methods for an
// emulator to implement in order for the driver to be able to
// interact with it. This is used to allow the driver to
// control the emulator. The emulator is passed to the driver
// during initialization.
type Emulator interface {
	// SendCommand sends a command packet to the emulator.
	SendCommand(command emulator.CommandPacket) emulator.ResponsePacket
	// Speed returns the speed of the emulator.
	Speed() float64
	// Status returns the status of the emulator.
	Status() emulator.Status
}

var (
	Pause     = emulator.CommandPacket{Command: emulator.CommandPause}
	Resume    = emulator.CommandPacket{Command: emulator.CommandResume}
	Reset     = emulator.CommandPacket{Command: emulator.CommandReset}
	Close     = emulator.CommandPacket{Command: emulator.CommandClose}
	SaveState = emulator.CommandPacket{Command: emulator.CommandSaveState}
	LoadState = emulator.CommandPacket{Command: emulator.CommandLoadState}
)

// Bounds of the speed multiplier drivers may request.
const (
	MinSpeed = 0.25
	MaxSpeed = 16.0
)

// SetSpeed returns a command packet that changes the emulation speed,
// clamped to MinSpeed - MaxSpeed.
func SetSpeed(speed float64) emulator.CommandPacket {
	return emulator.CommandPacket{
		Command: emulator.CommandSetSpeed,
		Data:    emulator.SpeedData(utils.Clamp(MinSpeed, speed, MaxSpeed)),
	}
}

// DriverOption is a display driver option. This is used to
// configure a display driver.
type DriverOption struct {
	Name        string // name of the option
	Default     any    // default value of the option
	Value       any    // pointer to the value of the option
	Description string // description of the option
	Type        string // "int", "bool", "string", "float"
}

// InstalledDriver is a driver that has been installed. This is
// used to allow drivers to register their name.
type InstalledDriver struct {
	Name    string
	Options []DriverOption
	Driver
}

// InstalledDrivers is a list of all the installed drivers. This
// variable is exported so that it can be used by the main
// program to determine which drivers can be used. Drivers should
// call display.Install in their init() function.
var InstalledDrivers []*InstalledDriver

// GetDriver returns the driver with the given name, or nil if
// no driver with that name is installed.
func GetDriver(name string) Driver {
	if name == "auto" {
		if len(InstalledDrivers) == 0 {
			return nil
		}
		return InstalledDrivers[0].Driver
	}
	for _, driver := range InstalledDrivers {
		if driver.Name == name {
			return driver.Driver
		}
	}

	return nil
}

// Install registers a display driver with the given name.
func Install(name string, driver Driver, options []DriverOption) {
	if InstalledDrivers == nil {
		InstalledDrivers = make([]*InstalledDriver, 0)
	}

	InstalledDrivers = append(InstalledDrivers, &InstalledDriver{
		Name:    name,
		Options: options,
		Driver:  driver,
	})
}

// Names returns the names of the installed drivers, in order of
// preference.
func Names() []string {
	names := make([]string, len(InstalledDrivers))
	for i, d := range InstalledDrivers {
		names[i] = d.Name
	}
	return names
}

// RegisterFlags iterates through all the display driver
// options and registers them with the flag package.
func RegisterFlags() {
	RegisterFlagSet(flag.CommandLine)
}

// RegisterFlagSet registers the driver options with fs. Options
// that only one driver declares are prefixed with the driver name,
// options shared by several drivers are registered once and set
// every driver's value.
func RegisterFlagSet(fs *flag.FlagSet) {
	optionCounts := make(map[string]int)
	opts := make(map[string][]DriverOption)
	prefixes := make(map[DriverOption]string)

	for _, driver := range InstalledDrivers {
		for _, opt := range driver.Options {
			// track how many times an option is used
			optionCounts[opt.Name]++
			opts[opt.Name] = append(opts[opt.Name], opt)
			prefixes[opt] = driver.Name
		}
	}

	names := make([]string, 0, len(optionCounts))
	for o := range optionCounts {
		names = append(names, o)
	}
	sort.Strings(names)

	for _, o := range names {
		// this requires an option merge
		if optionCounts[o] > 1 {
			// grab the first option
			opt := opts[o][0]
			multi := &multiValue{values: make([]any, 0), defaultValue: opt.Default}
			for _, mOpt := range opts[o] {
				multi.values = append(multi.values, mOpt.Value)
				multi.reset()
			}
			fs.Var(multi, o, opt.Description)
		} else {
			// this option is unique and should be prefixed
			opt := opts[o][0]
			optName := fmt.Sprintf("%s-%s", prefixes[opt], opt.Name)
			switch opt.Type {
			case "string":
				fs.StringVar(opt.Value.(*string), optName, opt.Default.(string), opt.Description)
			case "bool":
				fs.BoolVar(opt.Value.(*bool), optName, opt.Default.(bool), opt.Description)
			case "float":
				fs.Float64Var(opt.Value.(*float64), optName, opt.Default.(float64), opt.Description)
			case "int":
				fs.IntVar(opt.Value.(*int), optName, opt.Default.(int), opt.Description)
			}
		}
	}
}

type multiValue struct {
	values       []any
	defaultValue any
}

func (m *multiValue) String() string {
	if m == nil {
		return ""
	}
	switch v := m.defaultValue.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// reset writes the default value to every pointer.
func (m *multiValue) reset() {
	for _, ptr := range m.values {
		switch p := ptr.(type) {
		case *string:
			*p, _ = m.defaultValue.(string)
		case *bool:
			*p, _ = m.defaultValue.(bool)
		case *float64:
			*p, _ = m.defaultValue.(float64)
		case *int:
			*p, _ = m.defaultValue.(int)
		}
	}
}

func (m *multiValue) Set(value string) error {
	// update all the pointers with the provided value
	for _, ptr := range m.values {
		switch p := ptr.(type) {
		case *string:
			*p = value
		case *bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*p = b
		case *float64:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return err
			}
			*p = f
		case *int:
			i, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*p = i
		default:
			return fmt.Errorf("unknown type: %T", ptr) // should never happen, but just in case...
		}
	}

	return nil
}

func (m *multiValue) IsBoolFlag() bool {
	_, isBool := m.defaultValue.(bool)
	return isBool
}

// LoadROM returns a command packet that replaces the running program.
func LoadROM(rom []byte) emulator.CommandPacket {
	return emulator.CommandPacket{Command: emulator.CommandLoadROM, Data: rom}
}
