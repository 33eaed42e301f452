package base

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Test connectors
// --------------------------------------------------------------------------

type testServerConnector struct{}

func (c *testServerConnector) GetName() string { return "test" }

func (c *testServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", config.Endpoint)
}

func (c *testServerConnector) UpgradeConnection(net.Conn, common.ServerConfig) error { return nil }

type testClientConnector struct{}

func (c *testClientConnector) GetName() string { return "test" }

func (c *testClientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, timeout)
}

func (c *testClientConnector) UpgradeConnection(net.Conn, common.ClientConfig) error { return nil }

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// echoHandler answers every frame with "0" followed by the frame
func echoHandler(frame []byte) []byte {
	return append([]byte{'0'}, frame...)
}

func testServerConfig() common.ServerConfig {
	config := common.DefaultServerConfig()
	config.Endpoint = "127.0.0.1:0"
	config.MaxFrameSize = 64
	return config
}

// startServer runs a server transport until the test ends
func startServer(t *testing.T, config common.ServerConfig, handler transport.ServerHandleFunc) transport.IRPCServerTransport {
	t.Helper()

	srv := NewBaseServerTransport(&testServerConnector{})
	srv.RegisterHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Listen(ctx, config)
	}()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return srv
}

func dial(t *testing.T, srv transport.IRPCServerTransport) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func roundTrip(t *testing.T, conn net.Conn, req string) string {
	t.Helper()
	_, err := conn.Write([]byte(req))
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

// --------------------------------------------------------------------------
// Server tests
// --------------------------------------------------------------------------

func TestServerRequestLoop(t *testing.T) {
	srv := startServer(t, testServerConfig(), echoHandler)
	conn := dial(t, srv)

	// several requests on one connection, each answered in order
	for _, req := range []string{"0foo", "1foo bar", "4"} {
		assert.Equal(t, "0"+req, roundTrip(t, conn, req))
	}
}

func TestServerClientDisconnectDoesNotAffectOthers(t *testing.T) {
	srv := startServer(t, testServerConfig(), echoHandler)

	first := dial(t, srv)
	second := dial(t, srv)

	assert.Equal(t, "0a", roundTrip(t, first, "a"))
	require.NoError(t, first.Close())

	assert.Equal(t, "0b", roundTrip(t, second, "b"))

	// new connections are still accepted
	third := dial(t, srv)
	assert.Equal(t, "0c", roundTrip(t, third, "c"))
}

func TestServerOversizedFrameClosesConnection(t *testing.T) {
	config := testServerConfig()
	config.MaxFrameSize = 8

	var mu sync.Mutex
	var seen []int
	srv := startServer(t, config, func(frame []byte) []byte {
		mu.Lock()
		seen = append(seen, len(frame))
		mu.Unlock()
		return []byte("1too large")
	})
	conn := dial(t, srv)

	// exactly one byte above the limit fills the whole read buffer
	assert.Equal(t, "1too large", roundTrip(t, conn, strings.Repeat("x", config.MaxFrameSize+1)))

	// the server closed the connection after answering
	_, err := conn.Read(make([]byte, 16))
	assert.ErrorIs(t, err, io.EOF)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{config.MaxFrameSize + 1}, seen)
}

func TestServerMaxConnections(t *testing.T) {
	config := testServerConfig()
	config.MaxConnections = 1
	srv := startServer(t, config, echoHandler)

	first := dial(t, srv)
	// a completed round trip proves the first connection was admitted
	assert.Equal(t, "0a", roundTrip(t, first, "a"))

	second := dial(t, srv)
	buf := make([]byte, 64)
	n, err := second.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, busyFrame, buf[:n])

	_, err = second.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	// once the first connection is gone a new one is admitted
	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			return false
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(time.Second))
		if _, err := conn.Write([]byte("b")); err != nil {
			return false
		}
		n, err := conn.Read(buf)
		return err == nil && bytes.Equal(buf[:n], []byte("0b"))
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServerIdleTimeout(t *testing.T) {
	config := testServerConfig()
	config.IdleTimeoutSecond = 1
	srv := startServer(t, config, echoHandler)

	conn := dial(t, srv)
	assert.Equal(t, "0a", roundTrip(t, conn, "a"))

	// no further request: the server closes the connection
	_, err := conn.Read(make([]byte, 16))
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerCloseTerminatesConnections(t *testing.T) {
	srv := NewBaseServerTransport(&testServerConnector{})
	srv.RegisterHandler(echoHandler)

	done := make(chan error, 1)
	go func() {
		done <- srv.Listen(context.Background(), testServerConfig())
	}()
	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 5*time.Millisecond)

	conn := dial(t, srv)
	assert.Equal(t, "0a", roundTrip(t, conn, "a"))

	require.NoError(t, srv.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after Close")
	}

	_, err := conn.Read(make([]byte, 16))
	assert.Error(t, err)
}

func TestServerListenWithoutHandler(t *testing.T) {
	srv := NewBaseServerTransport(&testServerConnector{})
	assert.Error(t, srv.Listen(context.Background(), testServerConfig()))
}

func TestServerMetrics(t *testing.T) {
	srv := startServer(t, testServerConfig(), echoHandler)
	conn := dial(t, srv)
	assert.Equal(t, "0abc", roundTrip(t, conn, "abc"))

	// counters are updated after the response is written
	assert.Eventually(t, func() bool {
		var buf bytes.Buffer
		srv.Metrics().WritePrometheus(&buf)
		out := buf.String()

		return strings.Contains(out, `skv_transport_connections_accepted_total{transport="test"} 1`) &&
			strings.Contains(out, `skv_transport_read_bytes_total{transport="test"} 3`) &&
			strings.Contains(out, `skv_transport_written_bytes_total{transport="test"} 4`) &&
			strings.Contains(out, `skv_transport_connections_active{transport="test"} 1`)
	}, 2*time.Second, 10*time.Millisecond)
}

// --------------------------------------------------------------------------
// Client tests
// --------------------------------------------------------------------------

func testClientConfig(srv transport.IRPCServerTransport) common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond:   5,
		MaxFrameSize:    common.DefaultMaxFrameSize,
		MaxResponseSize: 1024,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{srv.Addr().String()},
			RetryCount:             3,
			ConnectionsPerEndpoint: 2,
		},
	}
}

func TestClientSend(t *testing.T) {
	srv := startServer(t, testServerConfig(), echoHandler)

	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(testClientConfig(srv)))
	defer client.Close()

	resp, err := client.Send([]byte("0foo"))
	require.NoError(t, err)
	assert.Equal(t, "00foo", string(resp))
}

func TestClientConcurrentSend(t *testing.T) {
	srv := startServer(t, testServerConfig(), echoHandler)

	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(testClientConfig(srv)))
	defer client.Close()

	const workers = 8
	const requests = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < requests; i++ {
				req := []byte{'0', byte('a' + w), byte('a' + i%26)}
				resp, err := client.Send(req)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "0"+string(req), string(resp))
			}
		}(w)
	}
	wg.Wait()
}

func TestClientResponseTooLarge(t *testing.T) {
	srv := startServer(t, testServerConfig(), func([]byte) []byte {
		return bytes.Repeat([]byte("0"), 100)
	})

	config := testClientConfig(srv)
	config.MaxResponseSize = 10
	config.Transport.RetryCount = 1

	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(config))
	defer client.Close()

	_, err := client.Send([]byte("4"))
	assert.Error(t, err)
}

// startPieceServer answers every request with response, written in pieces of
// chunk bytes with a pause after each piece
func startPieceServer(t *testing.T, response []byte, chunk int, pause time.Duration) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 64)
				for {
					if _, err := conn.Read(buf); err != nil {
						return
					}
					for off := 0; off < len(response); off += chunk {
						if _, err := conn.Write(response[off:min(off+chunk, len(response))]); err != nil {
							return
						}
						time.Sleep(pause)
					}
				}
			}()
		}
	}()

	return l.Addr().String()
}

func TestClientResponseInPieces(t *testing.T) {
	response := append([]byte{'0'}, bytes.Repeat([]byte("k"), 5000)...)
	addr := startPieceServer(t, response, 1000, 20*time.Millisecond)

	config := common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:       []string{addr},
			RetryCount:      1,
			ResponseQuietMs: 200,
		},
	}

	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(config))
	defer client.Close()

	// the second request on the same connection must not see parts of the first response
	for i := 0; i < 2; i++ {
		resp, err := client.Send([]byte("4"))
		require.NoError(t, err)
		assert.Equal(t, len(response), len(resp))
		assert.Equal(t, string(response), string(resp))
	}
}

func TestClientResponseIncompleteAtDeadline(t *testing.T) {
	response := append([]byte{'0'}, bytes.Repeat([]byte("k"), 5000)...)
	addr := startPieceServer(t, response, 1000, 600*time.Millisecond)

	config := common.ClientConfig{
		TimeoutSecond: 1,
		Transport: common.ClientTransportConfig{
			Endpoints:       []string{addr},
			RetryCount:      1,
			ResponseQuietMs: 2000,
		},
	}

	client := NewBaseClientTransport(&testClientConnector{})
	require.NoError(t, client.Connect(config))
	defer client.Close()

	_, err := client.Send([]byte("4"))
	assert.Error(t, err)
}

func TestClientConnectErrors(t *testing.T) {
	client := NewBaseClientTransport(&testClientConnector{})

	assert.Error(t, client.Connect(common.ClientConfig{}), "no endpoints")

	// reserve a port and release it so nothing listens there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	assert.Error(t, client.Connect(common.ClientConfig{
		TimeoutSecond: 1,
		Transport:     common.ClientTransportConfig{Endpoints: []string{addr}},
	}))

	_, err = client.Send([]byte("4"))
	assert.Error(t, err)
}
