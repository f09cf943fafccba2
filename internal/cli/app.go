package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foundersbook-backend/internal/app"
	"foundersbook-backend/internal/application/notifications"
	"foundersbook-backend/internal/application/parity"
	"foundersbook-backend/internal/config"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/infrastructure/database"
	"foundersbook-backend/internal/interfaces/router"
	"foundersbook-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLIApp is the foundersctl command tree.
type CLIApp struct {
	rootCmd *cobra.Command
	cfg     *config.Config
}

func NewCLIApp(version string) *CLIApp {
	a := &CLIApp{}
	root := &cobra.Command{
		Use:           "foundersctl",
		Short:         "Founders book backend: API server, reminder scheduler and admin tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(cfg.Env, cfg.LogLevel)
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.schedulerCmd(), a.parityCmd(), a.notifyCmd())
	a.rootCmd = root
	return a
}

func (a *CLIApp) Execute() error {
	return a.rootCmd.Execute()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connect opens resources and services for one-shot commands.
func (a *CLIApp) connect() (*app.Resources, *app.Services, error) {
	res, err := app.Connect(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewServices(a.cfg, res.DB, res.Dispatcher())
	if err != nil {
		res.Close()
		return nil, nil, err
	}
	return res, svc, nil
}

func (a *CLIApp) location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.cfg.SchedulerTimezone)
	if err != nil {
		return nil, fmt.Errorf("SCHEDULER_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (a *CLIApp) newScheduler(svc *app.Services) (*notifications.Scheduler, error) {
	loc, err := a.location()
	if err != nil {
		return nil, err
	}
	return notifications.NewScheduler(svc.Notifications, loc, a.cfg.ReminderDueAt, a.cfg.ReminderOverdueAt, a.cfg.DispatchConcurrency)
}

// buildServer builds the HTTP app and, when asked, a scheduler over the same
// services.
func (a *CLIApp) buildServer(res *app.Resources, svc *app.Services, withScheduler bool) (*fiber.App, *notifications.Scheduler, error) {
	fiberApp := router.New(a.cfg, res, svc)
	if !withScheduler {
		return fiberApp, nil, nil
	}
	sched, err := a.newScheduler(svc)
	if err != nil {
		return nil, nil, err
	}
	return fiberApp, sched, nil
}

func (a *CLIApp) serveCmd() *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			fiberApp, sched, err := a.buildServer(res, svc, withScheduler)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			if sched != nil {
				go func() {
					if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						log.Error().Err(err).Msg("Scheduler stopped")
					}
				}()
			}

			go func() {
				<-ctx.Done()
				_ = fiberApp.ShutdownWithTimeout(10 * time.Second)
			}()
			log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("Server running")
			return fiberApp.Listen(":" + a.cfg.Port)
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the reminder scheduler in this process")
	return cmd
}

func (a *CLIApp) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}
	withDB := func(fn func(res *app.Resources) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if a.cfg.IsSQLite() {
				return fmt.Errorf("SQL migrations target Postgres; SQLite databases are auto-migrated")
			}
			db, err := database.Open(a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			res := &app.Resources{DB: db}
			defer res.Close()
			return fn(res)
		}
	}
	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: withDB(func(res *app.Resources) error {
			return database.MigrateDown(res.DB, steps)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: withDB(func(res *app.Resources) error {
				if err := database.MigrateUp(res.DB); err != nil {
					return err
				}
				log.Info().Msg("Migrations applied")
				return nil
			}),
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			RunE: withDB(func(res *app.Resources) error {
				v, dirty, err := database.MigrationVersion(res.DB)
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			}),
		},
	)
	return cmd
}

func (a *CLIApp) schedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the daily due/overdue task reminder sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			sched, err := a.newScheduler(svc)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func (a *CLIApp) parityCmd() *cobra.Command {
	var month, year int
	periodFlags := func(c *cobra.Command) {
		now := time.Now().UTC()
		c.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")
		c.Flags().IntVar(&year, "year", now.Year(), "year")
	}

	cmd := &cobra.Command{Use: "parity", Short: "Inspect and maintain monthly parity snapshots"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print stored snapshots up to a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			rows, err := svc.Parity.GetAllUpTo(cmd.Context(), parity.Period{Month: month, Year: year})
			if err != nil {
				return err
			}
			return RenderParity(cmd.OutOrStdout(), rows)
		},
	}
	periodFlags(show)

	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute one month from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			mp, err := svc.Parity.ComputeParity(cmd.Context(), parity.Period{Month: month, Year: year})
			if err != nil {
				return err
			}
			return RenderParity(cmd.OutOrStdout(), []domain.MonthlyParity{*mp})
		},
	}
	periodFlags(recompute)

	settle := &cobra.Command{
		Use:   "settle",
		Short: "Mark a month as settled",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			mp, err := svc.Parity.Settle(cmd.Context(), parity.Period{Month: month, Year: year})
			if err != nil {
				return err
			}
			return RenderParity(cmd.OutOrStdout(), []domain.MonthlyParity{*mp})
		},
	}
	periodFlags(settle)

	cmd.AddCommand(show, recompute, settle)
	return cmd
}

func (a *CLIApp) notifyCmd() *cobra.Command {
	var kind string
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reminder sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			loc, err := a.location()
			if err != nil {
				return err
			}
			res, svc, err := a.connect()
			if err != nil {
				return err
			}
			defer res.Close()
			report, err := svc.Notifications.RunSweep(cmd.Context(), k, time.Now(), loc, a.cfg.DispatchConcurrency)
			if err != nil {
				return err
			}
			return RenderSweep(cmd.OutOrStdout(), report)
		},
	}
	sweep.Flags().StringVar(&kind, "kind", "due", "due or overdue")

	cmd := &cobra.Command{Use: "notify", Short: "Task reminder notifications"}
	cmd.AddCommand(sweep)
	return cmd
}

func parseKind(s string) (domain.NotificationType, error) {
	switch s {
	case "due":
		return domain.NotificationTaskDue, nil
	case "overdue":
		return domain.NotificationTaskOverdue, nil
	}
	return "", fmt.Errorf("unknown sweep kind %q, want due or overdue", s)
}
