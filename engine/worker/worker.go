// Package worker schedules the periodic off-chain reconciliation passes.
package worker

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/gebv/offsync/engine"
)

// PokeSubject triggers an immediate reconciliation pass.
const PokeSubject = "offsync.poke"

// Run drives engine.ProcessOffchainTasks on a fixed interval until ctx is
// done. With a non-nil nc, a message on PokeSubject triggers an extra pass
// between ticks.
func Run(ctx context.Context, nc *nats.EncodedConn, e *engine.Engine, interval time.Duration) error {
	l := zap.L().Named("offchain_worker")

	poke := make(chan struct{}, 1)
	if nc != nil {
		sub, err := nc.Subscribe(PokeSubject, func(_ *nats.Msg) {
			select {
			case poke <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.Info("Started.", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			l.Info("Stopped.")
			return nil
		case <-ticker.C:
		case <-poke:
		}
		e.ProcessOffchainTasks(ctx)
	}
}
