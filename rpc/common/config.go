package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket level settings shared by all stream transports
type SocketConf struct {
	// WriteBufferSize is the size of the kernel write buffer in bytes (0 = OS default)
	WriteBufferSize int
	// ReadBufferSize is the size of the kernel read buffer in bytes (0 = OS default)
	ReadBufferSize int
}

// TCPConf holds TCP specific settings (ignored by the unix transport)
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	// TCPLingerSec < 0 keeps the OS default
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the listener side socket settings
type ServerTransportConfig struct {
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for the server.
type ServerConfig struct {
	// Endpoint is the address to listen on (host:port for tcp, a path for unix)
	Endpoint string

	// MaxFrameSize bounds a request frame (opcode included). One read delivers one frame.
	MaxFrameSize int

	// Admission policy, 0 disables the respective limit
	MaxConnections int
	AcceptRate     float64 // accepted connections per second
	AcceptBurst    int

	// IdleTimeoutSecond closes a connection that sends nothing for this long (0 = never)
	IdleTimeoutSecond int64
	// TimeoutSecond bounds writing a single response (0 = no deadline)
	TimeoutSecond int64

	Transport ServerTransportConfig

	// Logging configuration
	LogLevel string
	LogFile  string

	// MetricsEndpoint is the address of the Prometheus metrics endpoint (empty = disabled)
	MetricsEndpoint string
}

// DefaultServerConfig returns the configuration of the baseline server:
// localhost:8080, 4 KiB frames, no connection limit and no idle timeout.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:      "localhost:8080",
		MaxFrameSize:  DefaultMaxFrameSize,
		AcceptBurst:   1,
		TimeoutSecond: 5,
		Transport: ServerTransportConfig{
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for values the server cannot work with
func (c *ServerConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.MaxFrameSize < 2 {
		return fmt.Errorf("max frame size must be at least 2 bytes, got %d", c.MaxFrameSize)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max connections must not be negative, got %d", c.MaxConnections)
	}
	if c.AcceptRate < 0 {
		return fmt.Errorf("accept rate must not be negative, got %f", c.AcceptRate)
	}
	if c.AcceptRate > 0 && c.AcceptBurst < 1 {
		return fmt.Errorf("accept burst must be at least 1 when an accept rate is set, got %d", c.AcceptBurst)
	}
	if c.IdleTimeoutSecond < 0 || c.TimeoutSecond < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	limit := func(v int) string {
		if v <= 0 {
			return "unlimited"
		}
		return strconv.Itoa(v)
	}

	seconds := func(v int64) string {
		if v <= 0 {
			return "disabled"
		}
		return fmt.Sprintf("%d sec", v)
	}

	// Server settings
	addSection("Server")
	addField("Endpoint", c.Endpoint)
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.MaxFrameSize))
	addField("Write Timeout", seconds(c.TimeoutSecond))
	addField("Idle Timeout", seconds(c.IdleTimeoutSecond))

	// Admission
	addSection("Admission")
	addField("Max Connections", limit(c.MaxConnections))
	if c.AcceptRate > 0 {
		addField("Accept Rate", fmt.Sprintf("%.2f conn/sec (burst %d)", c.AcceptRate, c.AcceptBurst))
	} else {
		addField("Accept Rate", "unlimited")
	}

	// Socket settings
	addSection("Socket")
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", seconds(int64(c.Transport.TCPKeepAliveSec)))
	addField("Read Buffer", limit(c.Transport.ReadBufferSize))
	addField("Write Buffer", limit(c.Transport.WriteBufferSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.LogFile != "" {
		addField("Log File", c.LogFile)
	}

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the dialing side settings
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	// ResponseQuietMs is how long the peer must stay silent before a response
	// that arrived in pieces is considered complete (0 = default of 10 ms)
	ResponseQuietMs int
	SocketConf
	TCPConf
}

type ClientConfig struct {
	TimeoutSecond int
	// MaxFrameSize must match the server, requests above it are rejected before sending
	MaxFrameSize int
	// MaxResponseSize is the size of the buffer a response is read into
	MaxResponseSize int
	Transport       ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.MaxFrameSize))
	addField("Max Response Size", fmt.Sprintf("%d bytes", c.MaxResponseSize))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Response Quiet", fmt.Sprintf("%d ms", c.Transport.ResponseQuietMs))
	addField("Conn Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
