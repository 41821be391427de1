// Package netutil holds small helpers shared by the connection managers.
package netutil

import "log/slog"

// SafeSend delivers data to a send channel without ever blocking or
// panicking. A full channel drops the payload (the peer is stalled and
// nothing is retried) and a closed channel's panic is recovered; the
// connection is already being torn down when that happens.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send on closed channel", "tag", "netutil", "recovered", r)
		}
	}()
	select {
	case ch <- data:
	default:
		slog.Warn("send buffer full, dropping message", "tag", "netutil")
	}
}
