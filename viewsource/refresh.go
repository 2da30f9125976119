package viewsource

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/squigglygo/squiggly/types"
)

// Refresher periodically re-runs a SQLViewSource's query on a cron
// schedule, so view definitions edited in the backing table become
// visible to new Parse calls without a process restart.
type Refresher struct {
	cron   *cron.Cron
	source *SQLViewSource
}

// StartPeriodicRefresh schedules source.Reload on the given cron
// expression (standard 5-field cron syntax) and starts running it in
// the background. Reload failures are logged and otherwise ignored, so
// a transient database outage does not take previously loaded views
// away from callers.
func StartPeriodicRefresh(source *SQLViewSource, cronSpec string, logger types.Logger) (*Refresher, error) {
	logger = types.NewLogger(logger)
	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		if err := source.Reload(context.Background()); err != nil {
			logger.Printf("view source refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return &Refresher{cron: c, source: source}, nil
}

// Stop halts the refresh schedule. It does not close the underlying
// SQLViewSource.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
