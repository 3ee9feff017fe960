package link

import (
	"context"
	"fmt"
	"time"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/logger"
)

// DefaultInterval is used when a publisher is given a non-positive interval.
const DefaultInterval = time.Second

type Source interface {
	Reports() []fans.Report
}

type Sender interface {
	Send(r fans.Report) error
}

// A Publisher sends every report of its source at a fixed interval.
type Publisher struct {
	source   Source
	sender   Sender
	interval time.Duration
	rounds   int
	log      logger.Logger
}

func NewPublisher(source Source, sender Sender, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Publisher{
		source:   source,
		sender:   sender,
		interval: interval,
	}
}

// Limit stops the publisher after n rounds. 0 means no limit.
func (p *Publisher) Limit(n int) *Publisher {
	p.rounds = max(n, 0)
	return p
}

// SetLogger enables the publisher logs. Without logger, Run is silent.
func (p *Publisher) SetLogger(l logger.Logger) {
	p.log = l
}

// Run publishes until ctx is done or the round limit is reached.
// The first round is published immediately.
func (p *Publisher) Run(ctx context.Context) error {
	var ticker *time.Ticker

	for round := 1; ; round++ {
		reports := p.source.Reports()
		for _, r := range reports {
			if err := p.sender.Send(r); err != nil {
				return fmt.Errorf("fan%d: %w", r.Select, err)
			}
		}
		if p.log != nil {
			p.log.Debug(fmt.Sprintf("Published %d reports (round %d)", len(reports), round))
		}

		if p.rounds > 0 && round >= p.rounds {
			return nil
		}

		if ticker == nil {
			ticker = time.NewTicker(p.interval)
			defer ticker.Stop()
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if p.log != nil {
				p.log.Info("Publisher stopped")
			}
			return nil
		}
	}
}
