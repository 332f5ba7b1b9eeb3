// Command maintenance runs the periodic cleanup jobs: spent OTP state, stale
// sessions and subscriptions past their end date.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"repairmybike-api/config"
	"repairmybike-api/database"
	"repairmybike-api/internal/domain/plans"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/logging"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errRollback = errors.New("dry run rollback")

func main() {
	task := flag.String("task", "all", "cleanup-otp | cleanup-sessions | expire-subscriptions | all")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	config.LoadEnv()
	logger, err := logging.Init(config.LOG_LEVEL)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	database.InitDB()

	if err := run(database.DB, *task, *dryRun, time.Now()); err != nil {
		zap.L().Error("maintenance failed", zap.String("task", *task), zap.Error(err))
		os.Exit(1)
	}
}

func run(db *gorm.DB, task string, dryRun bool, now time.Time) error {
	opts := users.DefaultCleanupOptions
	opts.DryRun = dryRun

	switch task {
	case "cleanup-otp":
		opts.Sessions = false
		return cleanup(db, now, opts)
	case "cleanup-sessions":
		opts.OTPs = false
		return cleanup(db, now, opts)
	case "expire-subscriptions":
		return expire(db, now, dryRun)
	case "all":
		if err := cleanup(db, now, opts); err != nil {
			return err
		}
		return expire(db, now, dryRun)
	default:
		return fmt.Errorf("unknown task %q", task)
	}
}

func cleanup(db *gorm.DB, now time.Time, opts users.CleanupOptions) error {
	report, err := users.RunCleanup(db, now, opts)
	if err != nil {
		return err
	}
	zap.L().Info("cleanup finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int64("expired_otps", report.ExpiredOTPs),
		zap.Int64("old_otps", report.OldOTPs),
		zap.Int64("reset_attempts", report.ResetAttempts),
		zap.Int64("pruned_sends", report.PrunedSends),
		zap.Int64("expired_sessions", report.ExpiredSessions),
		zap.Int64("pruned_sessions", report.PrunedSessions),
	)
	return nil
}

func expire(db *gorm.DB, now time.Time, dryRun bool) error {
	var expired int64
	err := db.Transaction(func(tx *gorm.DB) error {
		n, err := plans.ExpireSubscriptions(tx, now)
		if err != nil {
			return err
		}
		expired = n
		if dryRun {
			return errRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRollback) {
		return err
	}
	zap.L().Info("subscriptions expired", zap.Bool("dry_run", dryRun), zap.Int64("count", expired))
	return nil
}
