package workers

import (
	"chat-core/domain/event"
	"chat-core/observability"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Sample(t *testing.T) {
	req := require.New(t)
	metrics := observability.NewMetrics()
	ch := make(chan event.Event, 4)
	ch <- editedEvent("m1")
	ch <- editedEvent("m2")

	// Given a queue holding two of four events
	w := NewChannelCapacityWorker(logs.GetLoggerFromLevel(slog.LevelDebug),
		[]NamedChannel{{Name: "shard-0", Channel: ch}}, metrics, time.Second, 3)

	// When it is sampled
	w.Sample()

	// Then both readings are exported and nothing was consumed
	req.Equal(2.0, testutil.ToFloat64(metrics.QueueLength.WithLabelValues("shard-0")))
	req.Equal(4.0, testutil.ToFloat64(metrics.QueueCapacity.WithLabelValues("shard-0")))
	req.Len(ch, 2)
}
