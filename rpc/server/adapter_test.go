package server

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/ValentinKolb/sKV/lib/store/lstore"
	"github.com/ValentinKolb/sKV/rpc/common"
)

// failingStore is a store whose every operation fails
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Get(string) (string, bool, error)    { return "", false, errStoreDown }
func (failingStore) Set(string, string) error            { return errStoreDown }
func (failingStore) Delete(string) (string, bool, error) { return "", false, errStoreDown }
func (failingStore) Exists(string) (bool, error)         { return false, errStoreDown }
func (failingStore) Keys() ([]string, error)             { return nil, errStoreDown }

// TestAdapterSequence runs a sequence of commands against one store
func TestAdapterSequence(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := lstore.NewLocalStore()

	steps := []struct {
		name    string
		cmd     common.Command
		status  common.StatusCode
		payload string
	}{
		{"get missing", common.NewGetCommand("foo"), common.StatusNotFound, ""},
		{"exists missing", common.NewExistsCommand("foo"), common.StatusSuccess, "0"},
		{"set", common.NewSetCommand("foo", "bar"), common.StatusSuccess, ""},
		{"get", common.NewGetCommand("foo"), common.StatusSuccess, "bar"},
		{"exists", common.NewExistsCommand("foo"), common.StatusSuccess, "1"},
		{"overwrite", common.NewSetCommand("foo", "baz qux"), common.StatusSuccess, ""},
		{"get overwritten", common.NewGetCommand("foo"), common.StatusSuccess, "baz qux"},
		{"keys", common.NewKeysCommand(), common.StatusSuccess, "foo"},
		{"delete", common.NewDeleteCommand("foo"), common.StatusSuccess, "baz qux"},
		{"get deleted", common.NewGetCommand("foo"), common.StatusNotFound, ""},
		{"delete again", common.NewDeleteCommand("foo"), common.StatusNotFound, ""},
		{"keys empty", common.NewKeysCommand(), common.StatusSuccess, ""},
	}

	for _, step := range steps {
		resp := adapter.Handle(step.cmd, s)
		if resp.Status != step.status || string(resp.Payload) != step.payload {
			t.Errorf("%s: Handle(%+v) = (%s, %q), want (%s, %q)",
				step.name, step.cmd, resp.Status, resp.Payload, step.status, step.payload)
		}
	}
}

func TestAdapterKeys(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := lstore.NewLocalStore()

	for _, k := range []string{"a", "b", "c"} {
		adapter.Handle(common.NewSetCommand(k, "1"), s)
	}

	resp := adapter.Handle(common.NewKeysCommand(), s)
	if resp.Status != common.StatusSuccess {
		t.Fatalf("Handle(KEYS) status = %s, want %s", resp.Status, common.StatusSuccess)
	}

	keys := strings.Split(string(resp.Payload), " ")
	sort.Strings(keys)
	if strings.Join(keys, ",") != "a,b,c" {
		t.Errorf("Handle(KEYS) keys = %v, want [a b c]", keys)
	}
}

func TestAdapterStoreErrors(t *testing.T) {
	adapter := NewIStoreServerAdapter()

	cmds := []common.Command{
		common.NewGetCommand("k"),
		common.NewSetCommand("k", "v"),
		common.NewDeleteCommand("k"),
		common.NewExistsCommand("k"),
		common.NewKeysCommand(),
	}

	for _, cmd := range cmds {
		resp := adapter.Handle(cmd, failingStore{})
		if resp.Status != common.StatusInternalError || string(resp.Payload) != errStoreDown.Error() {
			t.Errorf("Handle(%s) = (%s, %q), want (%s, %q)",
				cmd.Op, resp.Status, resp.Payload, common.StatusInternalError, errStoreDown.Error())
		}
	}

	if resp := adapter.Handle(common.NewGetCommand("k"), nil); resp.Status != common.StatusInternalError {
		t.Errorf("Handle() with nil store status = %s, want %s", resp.Status, common.StatusInternalError)
	}

	if resp := adapter.Handle(common.Command{Op: '9'}, lstore.NewLocalStore()); resp.Status != common.StatusInternalError {
		t.Errorf("Handle() with unknown opcode status = %s, want %s", resp.Status, common.StatusInternalError)
	}
}
