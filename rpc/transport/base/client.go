package base

import (
	"bytes"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	defaultMaxResponseSize = 512 * 1024 // 512 KB
	defaultResponseQuiet   = 10 * time.Millisecond
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConnection represents a single net connection.
// The protocol carries no request ids, so a connection serves one request at a
// time and connMu is held from writing the request until the response is read.
type clientConnection struct {
	conn     net.Conn
	endpoint string
	buf      []byte
	connMu   sync.Mutex
	parent   *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for Round Robin
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = defaultMaxResponseSize
	}
	if config.Transport.ResponseQuietMs <= 0 {
		config.Transport.ResponseQuietMs = int(defaultResponseQuiet / time.Millisecond)
	}

	// Close all existing connections
	t.closeConnections()

	// Store the config
	t.config = config

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := 1
	if config.Transport.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.Transport.ConnectionsPerEndpoint
	}

	connections := make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)

	// Initialize client connections
	for _, endpoint := range config.Transport.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint: endpoint,
				// One extra byte detects responses above the limit
				buf:    make([]byte, config.MaxResponseSize+1),
				parent: t,
			}

			// Establish the initial connection using reconnect
			clientConn.connMu.Lock()
			err := clientConn.reconnect()
			clientConn.connMu.Unlock()
			if err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				continue
			}

			connections = append(connections, clientConn)
			Logger.Debugf("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)
		}
	}

	// Check if we have at least one connection
	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Transport.Endpoints)*connectionsPerEP, len(config.Transport.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(req []byte) (resp []byte, err error) {
	// Retry logic with exponential backoff
	var lastErr error

	// We always try at least once, and up to maxRetries times
	maxRetries := t.config.Transport.RetryCount
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	for i := 0; i < maxRetries; i++ {
		conn := t.getNextConnection()
		if conn == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		// Try with this connection
		data, err := conn.roundTrip(req)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	// All attempts failed
	return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, lastErr)
}

func (t *clientTransport) Close() error {
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// Simple Round Robin algorithm
	var index uint64
	if len(t.connections) == 1 {
		// optimize for single connection
		index = 0
	} else {
		index = atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
	}
	return t.connections[index]
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	connections := t.connections
	t.connections = nil
	t.connectionsMu.Unlock()

	for _, c := range connections {
		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
	}
}

// roundTrip writes one request and reads its response.
// On any I/O error the connection is dropped and re-established by the next call.
func (c *clientConnection) roundTrip(req []byte) ([]byte, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		if err := c.reconnect(); err != nil {
			return nil, err
		}
	}

	// Set deadline for the whole exchange
	var deadline time.Time
	if c.parent.config.TimeoutSecond > 0 {
		deadline = time.Now().Add(time.Duration(c.parent.config.TimeoutSecond) * time.Second)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.drop()
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	if err := writeFrame(c.conn, req); err != nil {
		c.drop()
		return nil, fmt.Errorf("error writing request: %w", err)
	}

	quiet := time.Duration(c.parent.config.Transport.ResponseQuietMs) * time.Millisecond
	frame, err := readResponse(c.conn, c.buf, quiet, deadline)
	if err != nil {
		// unread parts of the response would be taken for the next one
		c.drop()
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if len(frame) > c.parent.config.MaxResponseSize {
		// the rest of the response is still in the socket
		c.drop()
		return nil, fmt.Errorf("response exceeds the maximum size of %d bytes", c.parent.config.MaxResponseSize)
	}

	// The buffer is reused by the next request
	return bytes.Clone(frame), nil
}

// drop closes the connection after an I/O failure, connMu must be held
func (c *clientConnection) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// reconnect establishes or restores a connection to the endpoint, connMu must be held
func (c *clientConnection) reconnect() error {
	// Close the old connection if it exists
	c.drop()

	timeout := time.Duration(c.parent.config.TimeoutSecond) * time.Second

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
