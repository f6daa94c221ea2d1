//go:build !test

package utils

import "github.com/sqweek/dialog"

// AskForFile shows a native open dialog filtered to CHIP-8 ROMs and
// archives, returning the selected path.
func AskForFile(title, startingDir string) (string, error) {
	builder := dialog.File().
		SetStartDir(startingDir).
		Filter("CHIP-8 ROMs", "ch8", "c8", "rom", "zip", "7z", "gz", "xz").
		Filter("All files", "*").
		Title(title)

	// show the dialog
	return builder.Load()
}

// AskForSavePath shows a native save dialog for a PNG image.
func AskForSavePath(title string) (string, error) {
	filename, err := dialog.File().Filter("PNG Image", "png").Title(title).Save()
	if err != nil {
		return "", err
	}

	// does file have a .png extension?
	if len(filename) < 4 || filename[len(filename)-4:] != ".png" {
		filename += ".png"
	}
	return filename, nil
}
