package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
)

// upgradeConnection applies performance optimizations to a TCP connection
// using configuration values from TCPConf and SocketConf
func upgradeConnection(conn net.Conn, socket common.SocketConf, tcp common.TCPConf) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(tcp.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if socket.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(socket.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if socket.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(socket.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if tcp.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		keepAlivePeriod := time.Duration(tcp.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if tcp.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(tcp.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
