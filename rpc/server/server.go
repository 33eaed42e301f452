package server

import (
	"context"
	"io"
	"net"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/lib/store/lstore"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/serializer"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server with an empty local store
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(config.MaxFrameSize),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		store:      lstore.NewLocalStore(),
		adapter:    NewIStoreServerAdapter(),
		metrics:    newServerMetrics(),
	}
}

// RPCServer connects a server transport to the store. Every frame the transport
// receives is decoded, applied to the store and answered with the encoded response.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	store      store.IStore
	adapter    IRPCServerAdapter
	metrics    *serverMetrics
}

// Serve starts the RPC server
// It initializes the loggers, registers the request handler and blocks in the
// transport until the context is cancelled or Close is called.
func (s *RPCServer) Serve(ctx context.Context) error {
	if err := common.InitLoggers(s.config); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", s.config.String())

	s.transport.RegisterHandler(s.handle)
	return s.transport.Listen(ctx, s.config)
}

// Close stops the transport and closes all client connections
func (s *RPCServer) Close() error {
	return s.transport.Close()
}

// Store returns the store shared by all connections
func (s *RPCServer) Store() store.IStore {
	return s.store
}

// Addr returns the address the server listens on, or nil before Serve has bound it
func (s *RPCServer) Addr() net.Addr {
	return s.transport.Addr()
}

// WritePrometheus writes the command and transport metrics in Prometheus text format
func (s *RPCServer) WritePrometheus(w io.Writer) {
	s.metrics.set.WritePrometheus(w)
	s.transport.Metrics().WritePrometheus(w)
}

// handle is the transport handler: decode, dispatch, encode.
// A frame that cannot be decoded is answered with an InternalError response,
// the connection stays usable.
func (s *RPCServer) handle(frame []byte) []byte {
	cmd, err := s.serializer.DecodeCommand(frame)
	if err != nil {
		s.metrics.observeDecodeError(err)
		Logger.Debugf("Rejected request: %v", err)

		resp := common.NewInternalErrorResponse(err.Error())
		s.metrics.observeResponse(resp.Status)
		return s.serializer.EncodeResponse(resp)
	}

	start := time.Now()
	resp := s.adapter.Handle(cmd, s.store)
	s.metrics.observeCommand(cmd.Op, start)
	s.metrics.observeResponse(resp.Status)

	return s.serializer.EncodeResponse(resp)
}
