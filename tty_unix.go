//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris || zos
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris zos

package keyboard

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const nonBlockingSupported = true

// pollReady reports whether f has data ready, waiting at most timeout.
// A zero timeout is a non-blocking check. Interrupted selects are
// retried with a fresh descriptor set and timeout.
func pollReady(f *os.File, timeout time.Duration) (bool, error) {
	fd := int(f.Fd())
	for {
		var fds unix.FdSet
		fds.Zero()
		fds.Set(fd)
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		n, err := unix.Select(fd+1, &fds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0 && fds.IsSet(fd), nil
	}
}

// setNonblock puts the descriptor into non-blocking mode and returns
// its raw fd plus a function restoring the original status flags. The
// restore function is always safe to call, also when setNonblock
// failed. Callers must reuse the returned fd until restore runs:
// os.File.Fd puts a poller-registered descriptor back into blocking
// mode, undoing the fcntl.
func setNonblock(f *os.File) (int, func(), error) {
	fd := int(f.Fd())
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fd, func() {}, err
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_NONBLOCK); err != nil {
		return fd, func() {}, err
	}
	return fd, func() {
		_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	}, nil
}

// readByte reads exactly one byte. It returns a count of 0 when no
// data is available (EAGAIN on a non-blocking descriptor) and retries
// interrupted reads.
func readByte(fd int) (byte, int, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, 0, nil
		}
		if err != nil {
			return 0, 0, err
		}
		if n <= 0 {
			return 0, 0, nil
		}
		return buf[0], n, nil
	}
}
