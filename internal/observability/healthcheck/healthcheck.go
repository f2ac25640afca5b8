package healthcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultCronInterval = 60

var logger zerolog.Logger = log.Logger

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// ConnectionChecker reports whether a backing connection is usable.
type ConnectionChecker interface {
	IsConnectionHealthy() error
}

// DatabaseChecker pings the storage engine.
type DatabaseChecker interface {
	DoHealthCheck(ctx context.Context) error
}

// terminate is swapped in tests.
var terminate = terminateService

// StartHealthCheckCron checks the queue connections and the database every
// cronTime seconds and terminates the service on the first failure. queues
// may be nil when queue processing is disabled.
func StartHealthCheckCron(ctx context.Context, queues ConnectionChecker, database DatabaseChecker, cronTime int) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = defaultCronInterval
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)

	_, err := c.AddFunc(cronSpec, func() {
		runHealthCheck(ctx, queues, database, time.Duration(cronTime)*time.Second)
	})

	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func runHealthCheck(ctx context.Context, queues ConnectionChecker, database DatabaseChecker, timeout time.Duration) {
	if queues != nil {
		if err := queues.IsConnectionHealthy(); err != nil {
			logger.Error().Err(err).Msg("One or more queue connections are not healthy.")
			terminate()
			return
		}
	}
	if database != nil {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := database.DoHealthCheck(pingCtx); err != nil {
			logger.Error().Err(err).Msg("Database is not healthy.")
			terminate()
		}
	}
}

func terminateService() {
	logger.Fatal().Msg("Terminating service due to health check failure.")
	os.Exit(1)
}
