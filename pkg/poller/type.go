package poller

import (
	"context"
	"time"

	"github.com/solarbits/solax2mqtt/pkg/types"
)

// Fetcher performs one request/response exchange with the inverter.
type Fetcher interface {
	FetchRealTimeData(ctx context.Context) (*types.InverterReading, error)
}

// Publisher pushes readings and status updates to the broker.
type Publisher interface {
	PublishReading(reading *types.InverterReading) error
	PublishStatus(status string) error
}

type Poller struct {
	fetcher      Fetcher
	publisher    Publisher
	interval     time.Duration
	offlineDelay time.Duration

	retries int

	// Optional hooks, called after a successful publish / on a failed cycle.
	OnReading func(reading *types.InverterReading)
	OnError   func(err error)
}
