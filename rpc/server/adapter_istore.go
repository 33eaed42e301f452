package server

import (
	"strings"

	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(cmd common.Command, store store.IStore) common.Response {
	// Check for nil store
	if store == nil {
		return common.NewInternalErrorResponse("handler: store is nil")
	}

	// Handle different command types
	switch cmd.Op {
	case common.OpGet:
		val, ok, err := store.Get(cmd.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err.Error())
		}
		if !ok {
			return common.NewNotFoundResponse()
		}
		return common.NewSuccessResponse([]byte(val))

	case common.OpSet:
		if err := store.Set(cmd.Key, cmd.Value); err != nil {
			return common.NewInternalErrorResponse(err.Error())
		}
		return common.NewSuccessResponse(nil)

	case common.OpDelete:
		val, ok, err := store.Delete(cmd.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err.Error())
		}
		if !ok {
			return common.NewNotFoundResponse()
		}
		return common.NewSuccessResponse([]byte(val))

	case common.OpExists:
		ok, err := store.Exists(cmd.Key)
		if err != nil {
			return common.NewInternalErrorResponse(err.Error())
		}
		if ok {
			return common.NewSuccessResponse(common.ExistsTrue)
		}
		return common.NewSuccessResponse(common.ExistsFalse)

	case common.OpKeys:
		keys, err := store.Keys()
		if err != nil {
			return common.NewInternalErrorResponse(err.Error())
		}
		return common.NewSuccessResponse([]byte(strings.Join(keys, string(common.KeySeparator))))

	default:
		return common.NewInternalErrorResponse("unsupported command: " + cmd.Op.String())
	}
}
