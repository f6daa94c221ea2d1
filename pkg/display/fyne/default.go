package fyne

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/thelolagemann/gochip8/internal/video"
)

var (
	_ fyne.Theme = defaultTheme{}
)

// defaultTheme is the stock fyne theme with the background matched to
// an unlit CHIP-8 pixel, so the letterbox around the display blends in.
type defaultTheme struct{}

func (defaultTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground {
		return color.RGBA{R: video.Off[0], G: video.Off[1], B: video.Off[2], A: 0xFF}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (defaultTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (defaultTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (defaultTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
