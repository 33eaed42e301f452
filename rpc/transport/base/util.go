package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// minSegmentSize is the smallest MSS a TCP peer may announce (RFC 879). A response
// that is split by the network arrives with a first piece of at least this size.
const minSegmentSize = 536

// writeFrame writes a complete frame to the connection.
// A net.Conn Write either writes all bytes or returns an error.
func writeFrame(conn net.Conn, data []byte) error {
	_, err := conn.Write(data)
	return err
}

// readFrame performs exactly one read into buf and returns the bytes read as one frame.
// Data returned together with an error is still a frame, the error surfaces on the
// next read. A read of zero bytes means the peer closed the connection and is
// reported as io.EOF.
func readFrame(conn net.Conn, buf []byte) ([]byte, error) {
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// readResponse reads one response, which the server writes at once but the network
// may deliver in several pieces. A first piece shorter than minSegmentSize is the
// whole response. Otherwise reading continues until the peer sends nothing for
// quiet, the peer closes the connection or buf is full.
//
// deadline is the deadline of the whole exchange (zero for none). It is set on the
// connection again before returning. Reaching it while the response is still
// arriving is an error, the caller must not reuse the connection then.
func readResponse(conn net.Conn, buf []byte, quiet time.Duration, deadline time.Time) ([]byte, error) {
	frame, err := readFrame(conn, buf)
	if err != nil {
		return nil, err
	}

	n := len(frame)
	if n < minSegmentSize || n == len(buf) {
		return frame, nil
	}

	defer func() {
		_ = conn.SetReadDeadline(deadline)
	}()

	for n < len(buf) {
		next := time.Now().Add(quiet)
		atDeadline := false
		if !deadline.IsZero() && !next.Before(deadline) {
			next = deadline
			atDeadline = true
		}
		if err := conn.SetReadDeadline(next); err != nil {
			return nil, err
		}

		m, err := conn.Read(buf[n:])
		n += m
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, os.ErrDeadlineExceeded) && !atDeadline:
			return buf[:n], nil
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil, fmt.Errorf("response incomplete after %d bytes: %w", n, err)
		case errors.Is(err, io.EOF):
			return buf[:n], nil
		default:
			return nil, err
		}
	}
	return buf[:n], nil
}
