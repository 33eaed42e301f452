package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// busyFrame is written to connections rejected because MaxConnections is reached
var busyFrame = append([]byte{byte(common.StatusInternalError)}, "server busy"...)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector  IServerConnector
	handler    transport.ServerHandleFunc
	config     common.ServerConfig
	bufferPool *sync.Pool

	mu       sync.Mutex // protects listener and closed
	listener net.Listener
	closed   bool

	conns   *xsync.MapOf[string, net.Conn] // open connections by id
	wg      sync.WaitGroup                 // one per connection goroutine
	slots   chan struct{}                  // nil if MaxConnections is disabled
	limiter *rate.Limiter                  // nil if AcceptRate is disabled

	metrics           *metrics.Set
	acceptedTotal     *metrics.Counter
	rejectedTotal     *metrics.Counter
	oversizedTotal    *metrics.Counter
	readErrorsTotal   *metrics.Counter
	bytesReadTotal    *metrics.Counter
	bytesWrittenTotal *metrics.Counter
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport that runs one goroutine per connection
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	t := &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[string, net.Conn](),
		metrics:   metrics.NewSet(),
	}

	name := connector.GetName()
	t.acceptedTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_connections_accepted_total{transport=%q}`, name))
	t.rejectedTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_connections_rejected_total{transport=%q}`, name))
	t.oversizedTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_oversized_frames_total{transport=%q}`, name))
	t.readErrorsTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_read_errors_total{transport=%q}`, name))
	t.bytesReadTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_read_bytes_total{transport=%q}`, name))
	t.bytesWrittenTotal = t.metrics.NewCounter(fmt.Sprintf(`skv_transport_written_bytes_total{transport=%q}`, name))
	t.metrics.NewGauge(fmt.Sprintf(`skv_transport_connections_active{transport=%q}`, name), func() float64 {
		return float64(t.conns.Size())
	})

	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	t.config = config

	// One extra byte lets a single read detect a frame above the limit
	bufferSize := config.MaxFrameSize + 1
	t.bufferPool = &sync.Pool{
		New: func() interface{} {
			return make([]byte, bufferSize)
		},
	}
	if config.MaxConnections > 0 {
		t.slots = make(chan struct{}, config.MaxConnections)
	}
	if config.AcceptRate > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(config.AcceptRate), config.AcceptBurst)
	}

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = listener.Close()
		return net.ErrClosed
	}
	t.listener = listener
	t.mu.Unlock()

	// Unblock Accept once the context is done
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	Logger.Infof("Starting %s server on %s (max frame size %d bytes)",
		t.connector.GetName(), listener.Addr(), config.MaxFrameSize)

	err = t.acceptLoop(ctx, listener)

	// Close the remaining connections and wait for their goroutines
	if closeErr := t.Close(); closeErr != nil {
		Logger.Warningf("Failed to close %s server: %v", t.connector.GetName(), closeErr)
	}
	Logger.Infof("Stopped %s server on %s", t.connector.GetName(), listener.Addr())
	return err
}

func (t *serverTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	listener := t.listener
	t.mu.Unlock()

	var err error
	if listener != nil {
		if closeErr := listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = closeErr
		}
	}

	// Closing a connection unblocks its pending read
	t.conns.Range(func(id string, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})

	t.wg.Wait()
	return err
}

func (t *serverTransport) Metrics() *metrics.Set {
	return t.metrics
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acceptLoop accepts connections until the listener is closed or the context is done.
// It never waits on the work of a connection.
func (t *serverTransport) acceptLoop(ctx context.Context, listener net.Listener) error {
	var backoff time.Duration

	for {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil // context done
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}

			// Temporary failure (e.g. too many open files), back off and retry
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			Logger.Errorf("Accept error: %v; retrying in %s", err, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		t.serve(conn)
	}
}

// serve admits a new connection and starts its goroutine
func (t *serverTransport) serve(conn net.Conn) {
	if t.slots != nil {
		select {
		case t.slots <- struct{}{}:
		default:
			t.rejectedTotal.Inc()
			Logger.Warningf("Rejecting connection from %s: limit of %d connections reached", conn.RemoteAddr(), t.config.MaxConnections)
			t.reject(conn)
			return
		}
	}

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
	}

	id := ulid.Make().String()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.releaseSlot()
		_ = conn.Close()
		return
	}
	t.conns.Store(id, conn)
	t.wg.Add(1)
	t.mu.Unlock()

	t.acceptedTotal.Inc()

	go func() {
		defer func() {
			t.conns.Delete(id)
			t.releaseSlot()
			t.wg.Done()
		}()
		t.handleConnection(id, conn)
	}()
}

// reject answers a connection that cannot be admitted and closes it
func (t *serverTransport) reject(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	if err := writeFrame(conn, busyFrame); err != nil {
		Logger.Debugf("Failed to write busy response to %s: %v", conn.RemoteAddr(), err)
	}
}

func (t *serverTransport) releaseSlot() {
	if t.slots != nil {
		<-t.slots
	}
}

// handleConnection runs the request loop of one connection:
// read one frame, pass it to the handler, write the response, repeat.
func (t *serverTransport) handleConnection(id string, conn net.Conn) {
	defer conn.Close()

	Logger.Debugf("[%s] Connection from %s opened", id, conn.RemoteAddr())

	idleTimeout := time.Duration(t.config.IdleTimeoutSecond) * time.Second
	writeTimeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// Get a buffer from the pool, it is reused for every read of this connection
	buf := t.bufferPool.Get().([]byte)
	defer t.bufferPool.Put(buf)

	for {
		if idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
				Logger.Errorf("[%s] Failed to set read deadline: %v", id, err)
				return
			}
		}

		frame, err := readFrame(conn, buf)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				Logger.Debugf("[%s] Connection closed by client", id)
			case errors.Is(err, net.ErrClosed):
				Logger.Debugf("[%s] Connection closed by server", id)
			case errors.Is(err, os.ErrDeadlineExceeded):
				Logger.Infof("[%s] Closing idle connection from %s", id, conn.RemoteAddr())
			default:
				t.readErrorsTotal.Inc()
				Logger.Warningf("[%s] Error reading request: %v", id, err)
			}
			return
		}
		t.bytesReadTotal.Add(len(frame))

		// The buffer is full: the request did not fit into one frame
		oversized := len(frame) > t.config.MaxFrameSize

		start := time.Now()
		resp := t.handler(frame)
		Logger.Debugf("[%s] Processed request of %d bytes in %s", id, len(frame), time.Since(start))

		if writeTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				Logger.Errorf("[%s] Failed to set write deadline: %v", id, err)
				return
			}
		}

		if err := writeFrame(conn, resp); err != nil {
			Logger.Warningf("[%s] Failed to write response: %v", id, err)
			return
		}
		t.bytesWrittenTotal.Add(len(resp))

		if oversized {
			// The rest of the request is still in the socket, framing is lost
			t.oversizedTotal.Inc()
			Logger.Warningf("[%s] Request exceeds %d bytes, closing connection", id, t.config.MaxFrameSize)
			return
		}
	}
}
