package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sKV/cmd/kv"
	"github.com/ValentinKolb/sKV/cmd/serve"
	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "skv",
		Short: "simple key-value store",
		Long: fmt.Sprintf(`sKV (v%s)

A single-node, in-memory key-value store written in Go, served over
TCP or Unix sockets with a compact single-byte opcode protocol.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "max-frame-size"
	RootCmd.PersistentFlags().Int(key, 4096, util.WrapString("Maximum size of a request frame in bytes (opcode included). Client and server must use the same value"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
