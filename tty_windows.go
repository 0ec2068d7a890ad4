//go:build windows
// +build windows

package keyboard

import (
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// Windows console input has no fcntl analogue for byte-stream reads,
// so the engine runs in its degraded mode: the poller always uses the
// caller's full timeout and the non-blocking toggle is a no-op. Reads
// are still guarded so a drained stream reports a 0 count instead of
// blocking on the next keypress.
const nonBlockingSupported = false

// inputAvailable reports whether the handle has bytes queued.
// PeekNamedPipe covers pipe-backed input; console handles are wait
// objects signaled while input events are pending. Other handle kinds
// are assumed readable and left to the read to sort out.
func inputAvailable(h windows.Handle) bool {
	var avail uint32
	if err := windows.PeekNamedPipe(h, nil, 0, nil, &avail, nil); err == nil {
		return avail > 0
	}
	ev, err := windows.WaitForSingleObject(h, 0)
	if err != nil {
		return true
	}
	return ev == windows.WAIT_OBJECT_0
}

func pollReady(f *os.File, timeout time.Duration) (bool, error) {
	h := windows.Handle(f.Fd())
	deadline := time.Now().Add(timeout)
	for {
		if inputAvailable(h) {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func setNonblock(f *os.File) (int, func(), error) {
	return int(f.Fd()), func() {}, nil
}

func readByte(fd int) (byte, int, error) {
	h := windows.Handle(fd)
	if !inputAvailable(h) {
		return 0, 0, nil
	}
	var buf [1]byte
	var done uint32
	if err := windows.ReadFile(h, buf[:], &done, nil); err != nil {
		return 0, 0, err
	}
	if done == 0 {
		return 0, 0, nil
	}
	return buf[0], 1, nil
}
