//go:build linux

package serial

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

// OpenFakeRigPair opens a pseudoterminal pair and configures both ends
// raw at cfg. A caller can drive the master like a real serial device
// while a fake rig reads/writes the slave side to play back
// vendor-specific canned replies; this module's own tests use MemPort
// instead — adapted from the teacher's pty_linux.go, which existed for
// the same "drive a tty-shaped thing without real hardware" reason.
func OpenFakeRigPair(cfg Config, writeDelay, postWriteDelay time.Duration) (master Port, slavePath string, err error) {
	fd, err := syscall.Open("/dev/ptmx", syscall.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, "", wrapErr("open /dev/ptmx", err)
	}
	m := &device{f: fd, writeDelay: writeDelay, postWriteDelay: postWriteDelay}

	var locked int32
	if err := ioctl.Ioctl(uintptr(fd), tiocsptlck, uintptr(unsafe.Pointer(&locked))); err != nil {
		syscall.Close(fd)
		return nil, "", wrapErr("tiocsptlck", err)
	}
	var n uint32
	if err := ioctl.Ioctl(uintptr(fd), tiocgptn, uintptr(unsafe.Pointer(&n))); err != nil {
		syscall.Close(fd)
		return nil, "", wrapErr("tiocgptn", err)
	}
	slavePath = fmt.Sprintf("/dev/pts/%d", n)

	if err := m.configure(cfg); err != nil {
		syscall.Close(fd)
		return nil, "", err
	}
	return m, slavePath, nil
}
