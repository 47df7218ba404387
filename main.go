package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/example/tutorcore/internal/bot"
	"github.com/example/tutorcore/internal/config"
	"github.com/example/tutorcore/internal/database"
	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/internal/logger"
	"github.com/example/tutorcore/internal/planner"
	"github.com/example/tutorcore/internal/scheduler"
	"github.com/example/tutorcore/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tutorcore: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("TUTOR_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Notification.Enabled {
		log.Info().Msg("scheduler disabled, nothing to do")
		return nil
	}

	db, progress, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if files, ok := progress.(*store.FileStore); ok {
		lintCourses(ctx, files, cfg.Pedagogy, log)
	}

	p, err := planner.New(cfg.Planner)
	if err != nil {
		return err
	}

	notifier, err := bot.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.Debug, log)
	if err != nil {
		return err
	}

	sched := scheduler.New(notifier, db.Learners(), progress, p, cfg.Notification, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if configPath != "" {
		w := config.NewWatcher(configPath, cfg, log)
		go func() {
			err := w.Watch(ctx, func(next config.Config) {
				sched.SetWindow(next.Notification)
				log.Info().
					Int("start", next.Notification.StartHour).
					Int("end", next.Notification.EndHour).
					Bool("enabled", next.Notification.Enabled).
					Msg("notification window updated")
			})
			if err != nil {
				log.Error().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("reminder daemon started")
	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

// openStores opens the learner database and picks the progress backend.
// Without a database type, learners live in a sqlite file under the data
// directory and progress stays in JSON files.
func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*database.Store, store.ProgressStore, error) {
	driver, dsn := cfg.Database.Type, cfg.Database.URL
	if driver == "" {
		driver = database.DriverSQLite
	}
	if driver == database.DriverSQLite && dsn == "" {
		dsn = filepath.Join(cfg.DataDir, database.DefaultSQLiteFile)
	}

	db, err := database.Open(ctx, driver, dsn, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Type != "" {
		return db, db, nil
	}

	files, err := store.NewFileStore(cfg.DataDir, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, files, nil
}

// lintCourses logs unreadable courses and pedagogy warnings for every
// course on disk. Nothing here stops the daemon.
func lintCourses(ctx context.Context, files *store.FileStore, th graph.Thresholds, log zerolog.Logger) {
	names, err := files.ListCourses(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list courses")
		return
	}
	for _, name := range names {
		course, err := files.LoadCourse(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("course", name).Msg("course unreadable")
			continue
		}
		for _, w := range graph.ValidateGraphPedagogy(course.Graph, th) {
			log.Info().Str("course", name).Str("warning", w.String()).Msg("pedagogy warning")
		}
	}
}
