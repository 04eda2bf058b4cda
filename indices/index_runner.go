package indices

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	FullSyncSpec       = "0 0 23 * * ?"
	RedeliverySpec     = "0 */5 * * * ?"
	RedeliveryBatchMax = 200
)

// StartCron schedules the nightly full sync and the periodic redelivery of unsynced events.
func StartCron() (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(FullSyncSpec, func() {
		if err := IndicesFullSyncFunc(context.Background()); err != nil {
			logrus.Warnf("scheduled indices full sync: %v", err)
		}
	}); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(RedeliverySpec, func() {
		n, err := RedeliverPendingEventsFunc(context.Background(), RedeliveryBatchMax)
		if err != nil {
			logrus.Warnf("redeliver pending events: %v", err)
			return
		}
		if n > 0 {
			logrus.Infof("redelivered %d pending events", n)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
