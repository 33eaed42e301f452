package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/serializer"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/ValentinKolb/sKV/rpc/transport/tcp"
	"github.com/ValentinKolb/sKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by sKV (e.g. SKV_TIMEOUT)
	EnvPrefix = "skv"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("The timeout in seconds of the client"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "localhost:8080", WrapString("The address of the sKV server (host:port for tcp, a socket path for unix). Multiple endpoints can be specified as a comma-separated list"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint. Every connection carries one request at a time"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request"))

	key = "max-response-size"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the buffer a response is read into (in KB)"))

	key = "transport-response-quiet"
	cmd.PersistentFlags().Int(key, 10, WrapString("How long the server must stay silent before a response that arrived in pieces is complete (in milliseconds)"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the kernel write buffer of a connection (in KB, 0 = OS default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the kernel read buffer of a connection (in KB, 0 = OS default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY for the transport (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval for the transport (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time for the transport (in seconds, -1 = OS default, only for tcp)"))
}

// InitConfig loads the .env files and configures viper to read environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		TimeoutSecond:   viper.GetInt("timeout"),
		MaxFrameSize:    viper.GetInt("max-frame-size"),
		MaxResponseSize: viper.GetInt("max-response-size") * 1024,
		Transport: common.ClientTransportConfig{
			RetryCount:             viper.GetInt("transport-retries"),
			Endpoints:              splitEndpoints(viper.GetString("transport-endpoints")),
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			ResponseQuietMs:        viper.GetInt("transport-response-quiet"),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			},
		},
	}

	return conf
}

// GetSerializer creates the wire codec for the configured frame size
func GetSerializer() serializer.IRPCSerializer {
	return serializer.NewBinarySerializer(viper.GetInt("max-frame-size"))
}

// GetTransport creates the client transport based on configuration
func GetTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport creates the server transport based on configuration
func GetServerTransport() (transport.IRPCServerTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPServerTransport(), nil
	case "unix":
		return unix.NewUnixServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// splitEndpoints splits a comma-separated endpoint list and drops empty entries
func splitEndpoints(s string) []string {
	var endpoints []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return endpoints
}
