//go:build linux

package serial

import (
	ioctl "github.com/daedaluz/goioctl"
)

// ioctl request numbers, trimmed from the teacher's ioctl_linux.go to
// the handful this package actually issues: termios get/set (line
// configuration), TCFLSH (Flush), and the PTY pair used by the fake
// rig test harness in pty_linux.go.
const (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)

	tcsanow = uintptr(0)

	tcflsh   = uintptr(0x540B)
	tciflush = uintptr(0)
)

var (
	tiocgptn    = ioctl.IOR('T', 0x30, 4)
	tiocsptlck  = ioctl.IOW('T', 0x31, 4)
	tiocgptpeer = ioctl.IO('T', 0x41)
)
