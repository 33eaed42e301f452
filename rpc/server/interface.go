package server

import (
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for applying decoded commands to a store
type IRPCServerAdapter interface {
	// Handle applies a command to the store and returns the response.
	// It never fails: errors of the store are returned as an InternalError response.
	Handle(cmd common.Command, store store.IStore) (resp common.Response)
}
