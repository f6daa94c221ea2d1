package emulator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	"github.com/google/brotli/go/cbrotli"
)

// SaveFolder is the default folder state files are written to.
const SaveFolder = "saves"

// ErrNoState is returned when a ROM has no saved state.
var ErrNoState = errors.New("no saved state")

// StatePath returns the path of the state file for rom within dir.
// State files are named after the xxhash of the ROM so that renaming
// a ROM keeps its state.
func StatePath(dir string, rom []byte) string {
	return filepath.Join(dir, fmt.Sprintf("%016x.state", xxhash.Sum64(rom)))
}

// WriteState compresses state and writes it to path. The data is
// written to a temporary file first and renamed over path, so a crash
// mid-write never corrupts an existing state.
func WriteState(path string, state []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	compressed, err := cbrotli.Encode(state, cbrotli.WriterOptions{Quality: 5})
	if err != nil {
		return fmt.Errorf("compressing state: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), fmt.Sprintf("%s.*", filepath.Base(path)))
	if err != nil {
		return err
	}
	if _, err := f.Write(compressed); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadState reads and decompresses the state file at path.
func ReadState(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoState, path)
		}
		return nil, err
	}
	state, err := cbrotli.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decompressing state %s: %w", path, err)
	}
	return state, nil
}
