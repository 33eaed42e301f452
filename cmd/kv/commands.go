package kv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value...]",
		Short: "Sets the value for a key",
		Long:  "Sets the value for a key. The key must not contain spaces, further arguments are joined with a space to form the value.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := strings.Join(args[1:], " ")
			if err := rpcStore.Set(key, value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := rpcStore.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := rpcStore.Delete(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, deleted=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := rpcStore.Exists(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := rpcStore.Keys()
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("(%d keys)\n", len(keys))
			return nil
		},
	}
)
