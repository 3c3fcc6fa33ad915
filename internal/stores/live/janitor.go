package live

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// JanitorOptions configures eviction of live meeting entries
type JanitorOptions struct {
	// CompletedTTL is how long completed entries are kept after their last
	// update before eviction
	CompletedTTL time.Duration

	// StaleTTL is how long non-completed entries may go without an update
	// before they are considered abandoned and evicted
	StaleTTL time.Duration

	// Schedule is the cron expression for sweep runs
	Schedule string
}

// DefaultJanitorOptions returns the standard eviction policy: completed
// meetings linger for an hour, abandoned ones for a day, swept every five
// minutes.
func DefaultJanitorOptions() JanitorOptions {
	return JanitorOptions{
		CompletedTTL: 1 * time.Hour,
		StaleTTL:     24 * time.Hour,
		Schedule:     "*/5 * * * *",
	}
}

// Janitor evicts completed and stale entries from an in-memory live store on
// a cron schedule, keeping the store bounded for the life of the process
type Janitor struct {
	store *InMemoryStore
	opts  JanitorOptions
	cron  *cron.Cron
}

// NewJanitor creates a janitor for the given store. Call Start to begin
// sweeping and Stop on shutdown.
func NewJanitor(store *InMemoryStore, opts JanitorOptions) *Janitor {
	return &Janitor{
		store: store,
		opts:  opts,
		cron:  cron.New(),
	}
}

// Start schedules the sweep and begins the cron runner
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.opts.Schedule, func() {
		evicted := j.Sweep(time.Now().UTC())
		if evicted > 0 {
			log.Printf("[LIVE-JANITOR]: Evicted %d live meeting entries", evicted)
		}
	}); err != nil {
		return err
	}

	j.cron.Start()
	return nil
}

// Stop halts the cron runner
func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep evicts entries per the configured policy and returns how many were
// removed. Exposed separately from the schedule so it can be driven directly.
func (j *Janitor) Sweep(now time.Time) int {
	evicted := 0

	for _, m := range j.store.GetAll() {
		var ttl time.Duration
		if m.Status == meeting.StatusCompleted {
			ttl = j.opts.CompletedTTL
		} else {
			ttl = j.opts.StaleTTL
		}

		if now.Sub(m.UpdatedAt) > ttl {
			if j.store.Delete(m.ID) {
				evicted++
			}
		}
	}

	return evicted
}
