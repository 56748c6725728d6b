//go:build windows

package rpc

import (
	"net"
	"time"
)

const keepaliveIdle = 30 * time.Second

// configureKeepalive falls back to the stdlib's coarser SetKeepAlivePeriod
// on Windows, where golang.org/x/sys/windows has no direct equivalent of the
// Linux TCP_KEEPIDLE/TCP_KEEPINTVL/TCP_KEEPCNT triplet.
func configureKeepalive(conn *net.TCPConn) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return err
	}
	return conn.SetKeepAlivePeriod(keepaliveIdle)
}
