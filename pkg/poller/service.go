package poller

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/solarbits/solax2mqtt/pkg/solax"
)

// Consecutive unreachable polls tolerated before the inverter is
// reported offline and the loop backs off to offlineDelay.
const maxRetries = 3

func NewPoller(fetcher Fetcher, publisher Publisher, interval, offlineDelay time.Duration) *Poller {
	return &Poller{
		fetcher:      fetcher,
		publisher:    publisher,
		interval:     interval,
		offlineDelay: offlineDelay,
	}
}

// Run polls until ctx is cancelled. One fetch-decode-publish cycle per tick;
// any failure is logged and the loop proceeds to the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.reschedule(ticker, p.poll(ctx))

	for {
		select {
		case <-ctx.Done():
			log.Println("Poll loop stopped:", ctx.Err())
			return
		case <-ticker.C:
			p.reschedule(ticker, p.poll(ctx))
		}
	}
}

func (p *Poller) reschedule(ticker *time.Ticker, backoff bool) {
	if backoff {
		ticker.Reset(p.offlineDelay)
	} else {
		ticker.Reset(p.interval)
	}
}

// poll runs one cycle. Returns true when the next tick should wait
// offlineDelay instead of the regular interval.
func (p *Poller) poll(ctx context.Context) bool {
	reading, err := p.fetcher.FetchRealTimeData(ctx)
	if err != nil {
		p.fail(err)
		if errors.Is(err, solax.ErrUnreachable) {
			p.retries++
			if p.retries > maxRetries {
				log.Printf("Inverter is offline. Retrying in %v.", p.offlineDelay)
				if pubErr := p.publisher.PublishStatus("Offline"); pubErr != nil {
					log.Printf("MQTT publish error: %v", pubErr)
				}
				return true
			}
			log.Printf("Inverter not answering (%d/%d): %v", p.retries, maxRetries, err)
			return false
		}
		log.Printf("SolaX request error: %v", err)
		return false
	}
	p.retries = 0

	// Right after power-up the inverter reports zeroed grid counters.
	// Publishing those would corrupt total_increasing statistics.
	if reading.FeedInEnergyKWH == 0 && reading.ConsumeEnergyKWH == 0 {
		log.Printf("Inverter is initializing. Retrying in %v.", p.offlineDelay)
		return true
	}

	if err := p.publisher.PublishReading(reading); err != nil {
		p.fail(err)
		log.Printf("MQTT publish error: %v", err)
		return false
	}

	if p.OnReading != nil {
		p.OnReading(reading)
	}
	return false
}

func (p *Poller) fail(err error) {
	if p.OnError != nil {
		p.OnError(err)
	}
}

var _ Fetcher = (*solax.Client)(nil)
