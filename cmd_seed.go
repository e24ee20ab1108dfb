package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Prashu2024/form-builder-backend/internal/metrics"
	"github.com/Prashu2024/form-builder-backend/internal/seed"
	"github.com/Prashu2024/form-builder-backend/internal/service"
	"github.com/Prashu2024/form-builder-backend/internal/validator"
)

var (
	seedCount   int
	seedWorkers int
	seedRandom  int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert generated submissions into the configured store",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 1000, "Number of submissions to insert")
	seedCmd.Flags().IntVarP(&seedWorkers, "workers", "w", 4, "Concurrent writers")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 42, "Random seed")
}

type seedStats struct {
	inserted atomic.Int64
	rejected atomic.Int64
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if seedCount < 1 || seedWorkers < 1 {
		return errors.New("count and workers must be positive")
	}
	ctx := cmd.Context()

	form, err := loadForm(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	svc := service.NewSubmissionService(form, store, metrics.New(prometheus.NewRegistry()), zap.NewNop())

	stats, err := seedSubmissions(ctx, svc, seedCount, seedWorkers, seedRandom)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, rejected %d\n", stats.inserted.Load(), stats.rejected.Load())
	return nil
}

// seedSubmissions pushes count generated payloads through the service, so
// every stored record went through validation.
func seedSubmissions(ctx context.Context, svc *service.SubmissionService, count, workers int, randomSeed int64) (*seedStats, error) {
	stats := &seedStats{}
	jobs := make(chan int)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < count; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		gen := seed.New(svc.Form(), randomSeed+int64(w))
		g.Go(func() error {
			for i := range jobs {
				data, err := gen.Payload(i)
				if err != nil {
					return err
				}
				_, err = svc.Create(gctx, data)
				var verr *validator.Error
				switch {
				case errors.As(err, &verr):
					stats.rejected.Add(1)
				case err != nil:
					return fmt.Errorf("insert %d: %w", i, err)
				default:
					stats.inserted.Add(1)
				}
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("seeding", zap.Int64("inserted", stats.inserted.Load()), zap.Int("total", count))
			case <-done:
				return
			}
		}
	}()

	err := g.Wait()
	close(done)
	elapsed := time.Since(start)
	logger.Info("seed finished",
		zap.Int64("inserted", stats.inserted.Load()),
		zap.Int64("rejected", stats.rejected.Load()),
		zap.Duration("took", elapsed.Round(time.Millisecond)),
		zap.Float64("per_sec", float64(stats.inserted.Load())/elapsed.Seconds()))
	return stats, err
}
