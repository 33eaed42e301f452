package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// serverMetrics holds the command level metrics of one RPC server
type serverMetrics struct {
	set *metrics.Set
}

func newServerMetrics() *serverMetrics {
	return &serverMetrics{set: metrics.NewSet()}
}

// observeCommand counts a dispatched command and records its duration
func (m *serverMetrics) observeCommand(op common.OpCode, start time.Time) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`skv_commands_total{op=%q}`, op)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`skv_command_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

func (m *serverMetrics) observeResponse(status common.StatusCode) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`skv_responses_total{status=%q}`, status)).Inc()
}

// observeDecodeError counts a rejected frame by the kind of protocol error
func (m *serverMetrics) observeDecodeError(err error) {
	kind := "other"
	switch {
	case errors.Is(err, common.ErrInvalidCommand):
		kind = "invalid_command"
	case errors.Is(err, common.ErrMalformedFrame):
		kind = "malformed_frame"
	}
	m.set.GetOrCreateCounter(fmt.Sprintf(`skv_decode_errors_total{kind=%q}`, kind)).Inc()
}
