// Package statsview serves live charts of the runtime statistics
// (goroutines, heap, GC pauses) while the emulator runs.
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/thelolagemann/gochip8/pkg/log"
)

// Address is where the charts are served.
const Address = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine.
func Launch(logger log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		if err := mgr.Start(); err != nil {
			logger.Errorf("statsview: %v", err)
		}
	}()

	logger.Infof("stats server available at http://%s%s", Address, url)
}
