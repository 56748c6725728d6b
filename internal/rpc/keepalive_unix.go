//go:build unix

package rpc

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// keepaliveIdle and keepaliveInterval tune how quickly a half-open
// connection (the common failure mode against a server that crashed or was
// rebooted without sending FIN) is detected, versus the OS's often
// multi-hour default.
const (
	keepaliveIdle     = 30 * time.Second
	keepaliveInterval = 10 * time.Second
	keepaliveCount    = 3
)

// configureKeepalive enables TCP keepalive with aggressive timing via
// setsockopt, since net.TCPConn.SetKeepAlivePeriod alone does not expose the
// probe count or interval needed to detect a dead server within a few tens
// of seconds.
func configureKeepalive(conn *net.TCPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	err = raw.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(keepaliveIdle.Seconds())); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(keepaliveInterval.Seconds())); sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, keepaliveCount)
	})
	if err != nil {
		return err
	}
	return sockErr
}
