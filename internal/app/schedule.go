package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-notification-hub/internal/logging"
	"github.com/robfig/cron/v3"
)

// retryParser accepts standard five-field specs, an optional leading seconds
// field and descriptors such as "@every 5m".
var retryParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// StartRetrySchedule runs a retry pass on every tick of spec until ctx is
// done or the returned stop func is called. An empty spec schedules nothing.
func (a *App) StartRetrySchedule(ctx context.Context, spec string) (func(), error) {
	if spec == "" {
		return func() {}, nil
	}
	c := cron.New(cron.WithParser(retryParser), cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		logger := logging.Get()
		results, err := a.Retry.RetryFailed(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled retry pass failed")
			return
		}
		logger.Debug().Int("candidates", len(results)).Msg("scheduled retry pass done")
	}); err != nil {
		return nil, fmt.Errorf("retry schedule %q: %w", spec, err)
	}
	c.Start()

	stopped := make(chan struct{})
	stop := func() {
		select {
		case <-stopped:
		default:
			close(stopped)
			<-c.Stop().Done()
		}
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-stopped:
		}
	}()
	return stop, nil
}
