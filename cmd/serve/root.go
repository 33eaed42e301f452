package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/server"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("cli")

	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the sKV server",
		Long:    `Start the sKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SKV_<flag> (e.g. SKV_MAX_FRAME_SIZE=8192)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	defaults := common.DefaultServerConfig()

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, defaults.Endpoint, cmdUtil.WrapString("The address on which the server will listen (e.g. localhost:8080 or /tmp/skv.sock for the unix transport)"))

	key = "max-connections"
	ServeCmd.PersistentFlags().Int(key, defaults.MaxConnections, cmdUtil.WrapString("Maximum number of simultaneous client connections. Further connections receive an error response and are closed (0 = unlimited)"))

	key = "accept-rate"
	ServeCmd.PersistentFlags().Float64(key, defaults.AcceptRate, cmdUtil.WrapString("Maximum number of new connections accepted per second (0 = unlimited)"))

	key = "accept-burst"
	ServeCmd.PersistentFlags().Int(key, defaults.AcceptBurst, cmdUtil.WrapString("Number of connections that may be accepted at once above the accept rate"))

	key = "idle-timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.IdleTimeoutSecond, cmdUtil.WrapString("Close connections that send no request for this many seconds (0 = never)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, defaults.TimeoutSecond, cmdUtil.WrapString("Timeout in seconds for writing a response (0 = no timeout)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, defaults.LogLevel, cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-file"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Write logs to this file instead of stdout. The file is rotated at 100 MB"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address to serve Prometheus metrics on at /metrics (e.g. :9100, empty = disabled)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the kernel write buffer of a connection (in KB, 0 = OS default)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the kernel read buffer of a connection (in KB, 0 = OS default)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, defaults.Transport.TCPNoDelay, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, defaults.Transport.TCPLingerSec, cmdUtil.WrapString("The linger time (in seconds, -1 = OS default, only for tcp)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MaxFrameSize = viper.GetInt("max-frame-size")
	serveCmdConfig.MaxConnections = viper.GetInt("max-connections")
	serveCmdConfig.AcceptRate = viper.GetFloat64("accept-rate")
	serveCmdConfig.AcceptBurst = viper.GetInt("accept-burst")
	serveCmdConfig.IdleTimeoutSecond = viper.GetInt64("idle-timeout")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogFile = viper.GetString("log-file")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}

	return serveCmdConfig.Validate()
}

// run starts the sKV server and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {

	// Parse the transport
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		cmdUtil.GetSerializer(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the metrics endpoint
	if serveCmdConfig.MetricsEndpoint != "" {
		metricsServer := newMetricsServer(serveCmdConfig.MetricsEndpoint, serv)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("Metrics endpoint failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := serv.Serve(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// newMetricsServer creates the HTTP server exposing the server and process metrics
func newMetricsServer(addr string, serv *server.RPCServer) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		serv.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
