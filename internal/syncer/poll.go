package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/lumen/internal/remote"
)

// StatusFunc reads a remote sync status.
type StatusFunc func(ctx context.Context) (remote.StatusReport, error)

// PollStatus calls fetch every interval until the reported status is
// terminal, fetch fails or ctx is done. The first call is immediate.
func PollStatus(ctx context.Context, fetch StatusFunc, interval time.Duration) (remote.StatusReport, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		rep, err := fetch(ctx)
		if err != nil {
			return rep, fmt.Errorf("syncer: poll status: %w", err)
		}
		if Status(rep.Status).Terminal() {
			return rep, nil
		}

		select {
		case <-ctx.Done():
			return rep, ctx.Err()
		case <-t.C:
		}
	}
}
