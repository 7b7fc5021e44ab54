//go:build !linux

package dispatcher

import (
	"fmt"
	"os"
	"runtime"
)

func NewChannel() (Channel, *os.File, error) {
	return nil, nil, fmt.Errorf("worker channels are not available on %s", runtime.GOOS)
}

func openExitFd(int) int { return -1 }

func closeExitFd(int) {}
