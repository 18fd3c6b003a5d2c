package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bill-tracker/internal/bot"
	"bill-tracker/internal/config"
	"bill-tracker/internal/format"
	"bill-tracker/internal/model"
	"bill-tracker/internal/repository"
	"bill-tracker/internal/service"
	"bill-tracker/pkg/logging"
)

// app holds everything the subcommands share once config is loaded.
type app struct {
	cfg       config.Config
	loc       *time.Location
	db        *gorm.DB
	formatter *format.Formatter
	services  bot.Services
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "billtracker",
		Short:         "Track monthly bills per time frame from Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)
			a.cfg = cfg
			return nil
		},
	}

	// long-running Telegram bot with scheduled summaries
	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireTelegram(); err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			defer a.close()
			return a.runBot(cmd.Context())
		},
	}

	// one-off summary printed to stdout
	var groupID uint
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the current summary of one group, or of every group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			defer a.close()
			return a.printReports(cmd, groupID)
		},
	}
	reportCmd.Flags().UintVar(&groupID, "group", 0, "group ID (all groups when omitted)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			defer a.close()
			slog.Info("schema up to date", "database", a.cfg.DatabaseURL)
			return nil
		},
	}

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(migrateCmd)

	return rootCmd
}

// open connects the database (migrating it) and wires the services.
func (a *app) open() error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	formatter, err := format.New(format.Config{Locale: a.cfg.Locale, Currency: a.cfg.Currency})
	if err != nil {
		return err
	}
	db, err := repository.NewDB(a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	groupRepo := repository.NewGroupRepository(db)
	frameRepo := repository.NewTimeFrameRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	frames := service.NewTimeFrameService(frameRepo, loc)
	entries := service.NewEntryService(entryRepo, formatter, loc)

	a.loc = loc
	a.db = db
	a.formatter = formatter
	a.services = bot.Services{
		Groups:   service.NewGroupService(groupRepo),
		Frames:   frames,
		Entries:  entries,
		Reminder: service.NewReminderService(frames, entries, formatter),
	}
	slog.Debug("database ready", "database", a.cfg.DatabaseURL, "locale", formatter.Language(), "timezone", loc)
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (a *app) runBot(ctx context.Context) error {
	telegramBot, err := bot.New(a.cfg.TelegramToken, a.services, a.formatter, a.loc)
	if err != nil {
		return err
	}

	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("send reports", "error", err)
		}
	}

	scheduler := service.NewSchedulerService(a.loc)
	if a.cfg.ReportAt != "" {
		_, err = scheduler.ScheduleDaily(a.cfg.ReportAt, job)
	} else {
		_, err = scheduler.ScheduleInterval(a.cfg.ReportInterval, job)
	}
	if err != nil {
		return fmt.Errorf("schedule reports: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	slog.Info("bill tracker bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

func (a *app) printReports(cmd *cobra.Command, groupID uint) error {
	ctx := cmd.Context()

	var groups []model.Group
	if groupID != 0 {
		group, err := a.services.Groups.Get(ctx, groupID)
		if err != nil {
			return fmt.Errorf("group %d: %w", groupID, err)
		}
		groups = append(groups, *group)
	} else {
		all, err := a.services.Groups.List(ctx)
		if err != nil {
			return err
		}
		groups = all
	}

	now := time.Now()
	for _, group := range groups {
		text, err := a.services.Reminder.Summary(ctx, group, now)
		if err != nil {
			return fmt.Errorf("summary for group %d: %w", group.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s (#%d)\n%s\n\n", group.Name, group.ID, text)
	}
	return nil
}
