package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func (a *App) runServices(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := deps.HTTPServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if deps.TelegramPoller != nil {
		g.Go(func() error {
			return deps.TelegramPoller.Start(gCtx)
		})
	}

	if deps.KafkaConsumer != nil {
		g.Go(func() error {
			a.Log.Info("starting kafka reminders consumer")
			return deps.KafkaConsumer.Start(gCtx)
		})
	}

	// планировщик запускает горутины сам и не блокирует
	if deps.JobScheduler != nil {
		if err := deps.JobScheduler.Start(gCtx); err != nil {
			a.Log.Error("failed to start job scheduler", "error", err)
		}
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")
		a.shutdown(deps)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}

func (a *App) shutdown(deps *Dependencies) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Log.Error("failed to shutdown http server", "error", err)
	}

	if deps.KafkaConsumer != nil {
		if err := deps.KafkaConsumer.Close(); err != nil {
			a.Log.Error("failed to close kafka consumer", "error", err)
		}
	}
	if deps.KafkaProducer != nil {
		if err := deps.KafkaProducer.Close(); err != nil {
			a.Log.Error("failed to close kafka producer", "error", err)
		}
	}

	if err := deps.Cache.Close(); err != nil {
		a.Log.Error("failed to close cache", "error", err)
	}

	if deps.DB != nil {
		if err := deps.DB.Close(); err != nil {
			a.Log.Error("failed to close database", "error", err)
		}
	}

	a.Log.Info("application shutdown completed")
}
