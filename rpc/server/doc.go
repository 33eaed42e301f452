// Package server implements the RPC server of sKV. It connects a server
// transport, the wire codec and the store: every frame is decoded into a
// command, applied to the store through an adapter and answered with the
// encoded response.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that applies a command to a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating the adapter that maps
//     GET, SET, DELETE, EXISTS and KEYS onto the store.IStore methods.
//
//   - NewRPCServer: Factory function creating a server with an empty local
//     store and the specified transport and serializer.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//	config.Endpoint = "0.0.0.0:8080"
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(config.MaxFrameSize),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Error Handling:
//
//	Frames with an unknown opcode or a malformed payload are answered with
//	status '1' and the error message. They are counted in the
//	skv_decode_errors_total metric and never terminate the connection or the
//	server.
//
// Metrics:
//
//	skv_commands_total{op}, skv_command_duration_seconds{op},
//	skv_responses_total{status} and skv_decode_errors_total{kind} are written
//	together with the transport metrics by WritePrometheus.
//
// Thread Safety:
//
//	The server is thread-safe and handles concurrent requests across multiple
//	connections. Serve should be called only once.
package server
