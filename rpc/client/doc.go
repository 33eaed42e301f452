// Package client implements the RPC client of sKV. It provides an
// implementation of the store.IStore interface that forwards every operation
// to a remote server.
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the store.IStore
//     interface. This client forwards all operations to the server via the configured
//     transport layer and the wire codec.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  MaxFrameSize:  common.DefaultMaxFrameSize,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:8080"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	// Create store client
//	kv, _ := client.NewRPCStore(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer(config.MaxFrameSize))
//
//	// Use the store
//	kv.Set("mykey", "myvalue")
//	value, exists, _ := kv.Get("mykey")
//
// Error Handling:
//
//	A NotFound response is reported through the boolean return values, not as
//	an error. Transport failures and InternalError responses are returned as
//	*store.Error with RetCTransportError and RetCInternalError respectively.
//	Commands the server would reject (an empty key, a SET key containing a
//	space, a frame above MaxFrameSize) fail locally with RetCInvalidOperation.
//
// Performance Considerations:
//
//   - Every connection carries one request at a time. For concurrent use,
//     increasing ConnectionsPerEndpoint allows parallel requests.
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple
//	goroutines without additional synchronization.
package client
