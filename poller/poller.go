// Package poller drives the poll cycle: fetch every tracked service's
// document, diff it against the stored snapshot, log any change set, notify,
// then overwrite the snapshot. There is exactly one writer; cycles run
// sequentially, one service at a time.
package poller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ddd/discovery-tracker/changelog"
	"github.com/ddd/discovery-tracker/diff"
	"github.com/ddd/discovery-tracker/discovery"
	"github.com/ddd/discovery-tracker/fetcher"
	"github.com/ddd/discovery-tracker/snapshot"
)

// DocumentSource supplies raw documents for the tracked services. Satisfied
// by *fetcher.Fetcher.
type DocumentSource interface {
	FetchAll(ctx context.Context) []fetcher.Result
}

// Notifier receives each logged change for outbound delivery. Delivery
// failures are logged and dropped; the poller makes no guarantee.
type Notifier interface {
	Notify(ctx context.Context, change *changelog.LoggedChange) error
}

// Poller runs the periodic change-detection loop.
type Poller struct {
	source    DocumentSource
	snapshots *snapshot.Store
	changes   *changelog.Store
	notifier  Notifier // may be nil
	interval  time.Duration
	log       *zap.Logger
}

func New(source DocumentSource, snapshots *snapshot.Store, changes *changelog.Store, notifier Notifier, interval time.Duration, log *zap.Logger) *Poller {
	return &Poller{
		source:    source,
		snapshots: snapshots,
		changes:   changes,
		notifier:  notifier,
		interval:  interval,
		log:       log,
	}
}

// Run polls until the context is cancelled. Cycle-level failures are logged
// and the loop continues; only cancellation stops it.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.RunCycle(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle performs one full check of every tracked service.
func (p *Poller) RunCycle(ctx context.Context) {
	log := p.log.With(zap.String("cycle_id", uuid.New().String()))
	log.Info("starting discovery document check")

	stored, err := p.snapshots.GetAll()
	if err != nil {
		log.Error("failed to load stored snapshots", zap.Error(err))
		return
	}

	fetched := map[string]bool{}
	for _, result := range p.source.FetchAll(ctx) {
		if result.Err != nil {
			continue
		}
		fetched[result.Service] = true

		doc, err := discovery.ParseDocument(result.Content)
		if err != nil {
			log.Error("failed to parse discovery document",
				zap.String("service", result.Service), zap.Error(err))
			continue
		}

		p.processService(ctx, log, result.Service, stored[result.Service], doc)
	}

	for service := range stored {
		if !fetched[service] {
			log.Warn("service no longer available", zap.String("service", service))
		}
	}

	log.Info("completed discovery document check")
}

func (p *Poller) processService(ctx context.Context, log *zap.Logger, service string, previous, current *discovery.Document) {
	if previous == nil {
		log.Info("new service discovered", zap.String("service", service))
	} else {
		changes := diff.Compute(previous, current, service)
		if changes.Empty() {
			log.Info("no changes detected", zap.String("service", service))
		} else {
			log.Info("changes detected",
				zap.String("service", service),
				zap.Int("additions", len(changes.Additions)),
				zap.Int("modifications", len(changes.Modifications)),
				zap.Int("deletions", len(changes.Deletions)))

			logged, err := p.changes.Append(changes, current)
			if err != nil {
				log.Error("failed to append change log",
					zap.String("service", service), zap.Error(err))
				return
			}
			if p.notifier != nil {
				if err := p.notifier.Notify(ctx, logged); err != nil {
					log.Error("failed to send notification",
						zap.String("service", service), zap.Error(err))
				}
			}
		}
	}

	// The snapshot slot is overwritten unconditionally so the next cycle
	// diffs against what was actually seen this cycle.
	if err := p.snapshots.Put(service, current); err != nil {
		log.Error("failed to store snapshot",
			zap.String("service", service), zap.Error(err))
	}
}
