package client

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/serializer"
	"github.com/ValentinKolb/sKV/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Get(key string) (value string, loaded bool, err error) {
	resp, err := invokeRPCRequest(common.NewGetCommand(key), i.transport, i.serializer)
	if err != nil {
		return "", false, err
	}
	if resp.Status == common.StatusNotFound {
		return "", false, nil
	}
	return string(resp.Payload), true, nil
}

func (i *rpcStore) Set(key string, value string) (err error) {
	_, err = invokeRPCRequest(common.NewSetCommand(key, value), i.transport, i.serializer)
	return err
}

func (i *rpcStore) Delete(key string) (value string, loaded bool, err error) {
	resp, err := invokeRPCRequest(common.NewDeleteCommand(key), i.transport, i.serializer)
	if err != nil {
		return "", false, err
	}
	if resp.Status == common.StatusNotFound {
		return "", false, nil
	}
	return string(resp.Payload), true, nil
}

func (i *rpcStore) Exists(key string) (loaded bool, err error) {
	resp, err := invokeRPCRequest(common.NewExistsCommand(key), i.transport, i.serializer)
	if err != nil {
		return false, err
	}

	switch string(resp.Payload) {
	case string(common.ExistsTrue):
		return true, nil
	case string(common.ExistsFalse):
		return false, nil
	default:
		return false, fmt.Errorf("RPC client - unexpected exists response: %q", resp.Payload)
	}
}

func (i *rpcStore) Keys() (keys []string, err error) {
	resp, err := invokeRPCRequest(common.NewKeysCommand(), i.transport, i.serializer)
	if err != nil {
		return nil, err
	}

	// An empty store answers with an empty payload
	if len(resp.Payload) == 0 {
		return []string{}, nil
	}
	return strings.Split(string(resp.Payload), string(common.KeySeparator)), nil
}
