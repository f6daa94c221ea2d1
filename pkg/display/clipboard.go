//go:build !test

package display

import (
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

func copyFrame(frame []byte) error {
	img, err := utils.FrameImage(frame, video.ScreenWidth, video.ScreenHeight)
	if err != nil {
		return err
	}
	return utils.CopyImage(utils.ScaleImage(img, screenshotScale))
}
