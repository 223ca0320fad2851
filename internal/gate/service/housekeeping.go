package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/pkg/ratelimit"
)

// PendingSecretMaxAge is how long an unconfirmed enrollment secret may sit
// before housekeeping removes it. A subject who abandoned enrollment should
// not leave a usable secret in the database indefinitely.
const PendingSecretMaxAge = 24 * time.Hour

// Housekeeping runs periodic maintenance: clearing abandoned enrollment
// secrets and sweeping expired rate-limit windows from the in-memory store.
type Housekeeping struct {
	store    store.Store
	memStore *ratelimit.MemoryStore // nil when the limiter is Redis-backed
	interval time.Duration
	log      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHousekeeping(st store.Store, mem *ratelimit.MemoryStore, interval time.Duration, log *slog.Logger) *Housekeeping {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Housekeeping{
		store:    st,
		memStore: mem,
		interval: interval,
		log:      log,
	}
}

// Start launches the maintenance loop. Call Stop to end it.
func (h *Housekeeping) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.runOnce(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for any in-flight pass to finish.
func (h *Housekeeping) Stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *Housekeeping) runOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-PendingSecretMaxAge)
	cleared, err := h.store.Subjects().ClearStalePendingSecrets(ctx, cutoff)
	if err != nil {
		h.log.Error("housekeeping: clearing stale enrollment secrets failed", "error", err.Error())
	} else if cleared > 0 {
		h.log.Info("housekeeping: cleared stale enrollment secrets", "count", cleared)
	}

	if h.memStore != nil {
		if swept := h.memStore.Sweep(); swept > 0 {
			h.log.Debug("housekeeping: swept expired rate-limit windows", "count", swept)
		}
	}
}
