package hierarchy

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher periodically drops every cached graph so that a process sharing
// its edge store with other writers re-reads their mutations. Caches are
// only invalidated locally after this process's own writes, so without a
// refresher a multi-process deployment is eventually consistent with no
// upper bound on staleness.
type Refresher struct {
	caches []*GraphCache
	cron   *cron.Cron
	log    logrus.FieldLogger
}

// NewRefresher schedules an InvalidateAll across the given caches. The
// schedule uses cron syntax, including descriptors such as "@every 10m".
func NewRefresher(caches []*GraphCache, schedule string, log logrus.FieldLogger) (*Refresher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Refresher{
		caches: caches,
		cron:   cron.New(),
		log:    log,
	}
	if _, err := r.cron.AddFunc(schedule, r.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins running the schedule in its own goroutine.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule. A refresh already in flight runs to completion.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) refresh() {
	for _, cache := range r.caches {
		cache.InvalidateAll()
	}
	r.log.WithField("caches", len(r.caches)).Debug("hierarchy graph caches refreshed")
}
