package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Avflux/chronos/internal/accounting"
	"github.com/Avflux/chronos/internal/credential"
	"github.com/Avflux/chronos/internal/export"
	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/report"
	"github.com/Avflux/chronos/internal/spreadsheet"
	"github.com/Avflux/chronos/internal/store"
	"github.com/Avflux/chronos/internal/tracker"
	"github.com/Avflux/chronos/internal/watch"
)

// app bundles everything a subcommand needs, wired once per invocation.
type app struct {
	cfg   *model.AppConfig
	log   *logrus.Logger
	store *store.SQLiteStore
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnf("closing store: %v", err)
	}
}

// openApp loads config, sets up logging, and opens the database.
func openApp(cmd *cobra.Command) (*app, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &app{cfg: cfg, log: log, store: st}, nil
}

// resolveUser looks a user up by username for commands that take one.
func resolveUser(ctx context.Context, a *app, username string) (*model.User, error) {
	u, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return u, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "chronos",
	Short: "Activity time tracker with monthly workbook reconciliation",
	Long: `Chronos tracks timed activities per user, summarizes productivity
into monetary value, and reconciles daily hours into a month-per-sheet
Excel workbook.`,
}

// === user management ===

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		team, _ := cmd.Flags().GetString("team")
		rate, _ := cmd.Flags().GetFloat64("rate")

		u := model.User{
			Username:  args[0],
			FullName:  name,
			Role:      model.Role(role),
			BaseValue: rate,
		}
		if team != "" {
			u.TeamID = &team
		}
		if err := a.store.CreateUser(cmd.Context(), u); err != nil {
			fail(err)
		}
		fmt.Printf("Created user %s\n", args[0])
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		var teamID *string
		if team, _ := cmd.Flags().GetString("team"); team != "" {
			teamID = &team
		}
		users, err := a.store.GetUsers(cmd.Context(), teamID)
		if err != nil {
			fail(err)
		}
		for _, u := range users {
			state := ""
			if u.Locked {
				state = " [locked]"
			}
			fmt.Printf("%-20s %-10s %s%s\n", u.Username, u.Role, accounting.FormatCurrency(u.BaseValue), state)
		}
	},
}

var userSetRateCmd = &cobra.Command{
	Use:   "set-rate <username> <rate>",
	Short: "Update a user's monthly base value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		rate, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fail(fmt.Errorf("invalid rate %q: %w", args[1], err))
		}
		u, err := resolveUser(cmd.Context(), a, args[0])
		if err != nil {
			fail(err)
		}
		if err := a.store.SetBaseValue(cmd.Context(), u.ID, rate); err != nil {
			fail(err)
		}
		fmt.Printf("Base value for %s set to %s\n", u.Username, accounting.FormatCurrency(rate))
	},
}

var userLockCmd = &cobra.Command{
	Use:   "lock <username>",
	Short: "Lock a user out of activity tracking",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { runLockChange(cmd, args[0], model.LockActionLock) },
}

var userUnlockCmd = &cobra.Command{
	Use:   "unlock <username>",
	Short: "Restore a locked user's access",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { runLockChange(cmd, args[0], model.LockActionUnlock) },
}

func runLockChange(cmd *cobra.Command, username string, action model.LockAction) {
	a, err := openApp(cmd)
	if err != nil {
		fail(err)
	}
	defer a.close()

	u, err := resolveUser(cmd.Context(), a, username)
	if err != nil {
		fail(err)
	}
	actor, _ := cmd.Flags().GetString("actor")
	reason, _ := cmd.Flags().GetString("reason")
	ev := model.LockEvent{
		UserID:  u.ID,
		Action:  action,
		ActorID: actor,
		Reason:  reason,
	}
	if err := a.store.AppendLockEvent(cmd.Context(), ev); err != nil {
		fail(err)
	}
	fmt.Printf("User %s %sed\n", u.Username, action)
}

var userPurgeCmd = &cobra.Command{
	Use:   "purge <username>",
	Short: "Delete all of a user's activity history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := resolveUser(cmd.Context(), a, args[0])
		if err != nil {
			fail(err)
		}
		n, err := a.store.DeleteUserActivities(cmd.Context(), u.ID)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Deleted %d activities for %s\n", n, u.Username)
	},
}

// === teams ===

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a team",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		description, _ := cmd.Flags().GetString("description")
		team := model.Team{Name: args[0], Description: description}
		if err := a.store.CreateTeam(cmd.Context(), team); err != nil {
			fail(err)
		}
		fmt.Printf("Created team %s\n", args[0])
	},
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		teams, err := a.store.GetTeams(cmd.Context())
		if err != nil {
			fail(err)
		}
		for _, team := range teams {
			fmt.Printf("%-20s %s\n", team.Name, team.Description)
		}
	},
}

// === activity lifecycle ===

var startCmd = &cobra.Command{
	Use:   "start <description>",
	Short: "Start timing a new activity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := currentUser(cmd, a)
		if err != nil {
			fail(err)
		}
		activityType, _ := cmd.Flags().GetString("type")
		svc := tracker.NewService(a.store, a.log)
		activity, err := svc.Start(cmd.Context(), u.ID, args[0], activityType)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Started %q (%s)\n", activity.Description, activity.ID[:8])
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the activity in flight",
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(cmd, "Paused", func(svc *tracker.Service, ctx context.Context, userID string) (*model.Activity, error) {
			return svc.Pause(ctx, userID)
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused activity",
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(cmd, "Resumed", func(svc *tracker.Service, ctx context.Context, userID string) (*model.Activity, error) {
			return svc.Resume(ctx, userID)
		})
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Complete the activity in flight",
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(cmd, "Finished", func(svc *tracker.Service, ctx context.Context, userID string) (*model.Activity, error) {
			return svc.Finish(ctx, userID)
		})
	},
}

func runTransition(cmd *cobra.Command, verb string, fn func(*tracker.Service, context.Context, string) (*model.Activity, error)) {
	a, err := openApp(cmd)
	if err != nil {
		fail(err)
	}
	defer a.close()

	u, err := currentUser(cmd, a)
	if err != nil {
		fail(err)
	}
	svc := tracker.NewService(a.store, a.log)
	activity, err := fn(svc, cmd.Context(), u.ID)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%s %q at %s\n", verb, activity.Description,
		accounting.FormatClock(activity.Elapsed(time.Now().UTC())))
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the activity in flight",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := currentUser(cmd, a)
		if err != nil {
			fail(err)
		}
		svc := tracker.NewService(a.store, a.log)
		activity, err := svc.Current(cmd.Context(), u.ID)
		if errors.Is(err, tracker.ErrNoActivityInFlight) {
			fmt.Println("No activity in flight")
			return
		}
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s  %q (%s)  %s\n", activity.State, activity.Description,
			activity.ActivityType,
			accounting.FormatClock(activity.Elapsed(time.Now().UTC())))
	},
}

var exceedCmd = &cobra.Command{
	Use:   "exceed <reason>",
	Short: "Record that the current activity ran over its allotted time",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := currentUser(cmd, a)
		if err != nil {
			fail(err)
		}
		svc := tracker.NewService(a.store, a.log)
		activity, err := svc.Current(cmd.Context(), u.ID)
		if err != nil {
			fail(err)
		}
		by, _ := cmd.Flags().GetDuration("by")
		if err := svc.ReportExceeded(cmd.Context(), activity.ID, by, args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Recorded %s overrun on %q\n", by, activity.Description)
	},
}

// === reporting ===

var reportCmd = &cobra.Command{
	Use:   "report <username>",
	Short: "Summarize a user's tracked time and computed value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := resolveUser(cmd.Context(), a, args[0])
		if err != nil {
			fail(err)
		}
		from, to, err := parseRange(cmd)
		if err != nil {
			fail(err)
		}

		calc := accounting.NewCalculator(a.cfg.Accounting, a.log)
		gen := report.NewGenerator(a.store, calc, a.log)

		summary, err := gen.Summarize(cmd.Context(), u.ID, from, to)
		if err != nil {
			fail(err)
		}
		fmt.Print(summary.Render())

		if daily, _ := cmd.Flags().GetBool("daily"); daily {
			totals, err := gen.DailyTotals(cmd.Context(), u.ID, from, to)
			if err != nil {
				fail(err)
			}
			fmt.Println()
			for _, dt := range totals {
				fmt.Printf("%s  %s\n", dt.Day.Format("2006-01-02"),
					accounting.FormatClock(dt.Total))
			}
		}
	},
}

// parseRange reads --from/--to, defaulting to the current calendar month.
func parseRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw, _ := cmd.Flags().GetString("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from %q: %w", raw, err)
		}
		from = parsed
	}
	if raw, _ := cmd.Flags().GetString("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to %q: %w", raw, err)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// === workbook export ===

var exportCmd = &cobra.Command{
	Use:   "export <username>",
	Short: "Reconcile a day's hours into the monthly workbook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := resolveUser(cmd.Context(), a, args[0])
		if err != nil {
			fail(err)
		}

		day := time.Now().UTC()
		if raw, _ := cmd.Flags().GetString("date"); raw != "" {
			day, err = time.Parse("2006-01-02", raw)
			if err != nil {
				fail(fmt.Errorf("invalid --date %q: %w", raw, err))
			}
		}

		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = a.cfg.Workbook.Path
		}
		if path == "" {
			fail(fmt.Errorf("no workbook path: set workbook.path in config or pass --file"))
		}

		password, err := credential.WorkbookPassword(a.cfg.Workbook.PasswordKey)
		if errors.Is(err, credential.ErrNotSet) {
			fail(fmt.Errorf("%w: run 'chronos export set-password'", err))
		}
		if err != nil {
			fail(err)
		}

		wb, err := spreadsheet.Open(path)
		if err != nil {
			fail(err)
		}
		defer wb.Close()

		exporter := export.New(a.store, a.cfg.Workbook, a.log)
		result, err := exporter.Export(cmd.Context(), u.ID, day, wb, password)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Written: %d\n", result.Written)
		fmt.Printf("Skipped: %d\n", result.Skipped)
	},
}

var exportSetPasswordCmd = &cobra.Command{
	Use:   "set-password <password>",
	Short: "Store the workbook protection password in the system keyring",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		if err := credential.SetWorkbookPassword(a.cfg.Workbook.PasswordKey, args[0]); err != nil {
			fail(err)
		}
		fmt.Println("Workbook password stored")
	},
}

// === lock watching ===

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow lock-state changes until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		interval := time.Duration(a.cfg.Observer.PollIntervalSec) * time.Second
		observer := watch.New(a.store, interval, a.log)
		changes, cancel := observer.Subscribe()
		defer cancel()

		observer.Start(ctx)
		defer observer.Stop()

		fmt.Println("Watching lock changes (Ctrl-C to stop)")
		for {
			select {
			case <-ctx.Done():
				return
			case change := <-changes:
				verb := "unlocked"
				if change.Locked {
					verb = "locked"
				}
				fmt.Printf("%s  user %s %s\n", change.At.Format(time.RFC3339), change.UserID, verb)
			}
		}
	},
}

// === notifications ===

var inboxCmd = &cobra.Command{
	Use:   "inbox <username>",
	Short: "Show a user's unread notifications",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(err)
		}
		defer a.close()

		u, err := resolveUser(cmd.Context(), a, args[0])
		if err != nil {
			fail(err)
		}
		unread, err := a.store.GetUnreadNotifications(cmd.Context(), u.ID)
		if err != nil {
			fail(err)
		}
		if len(unread) == 0 {
			fmt.Println("No unread notifications")
			return
		}
		ack, _ := cmd.Flags().GetBool("ack")
		for _, n := range unread {
			fmt.Printf("%s  [%s] %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Kind, n.Message)
			if ack {
				if err := a.store.MarkNotificationRead(cmd.Context(), n.ID); err != nil {
					a.log.Warnf("marking notification read: %v", err)
				}
			}
		}
	},
}

// currentUser resolves the acting user from --user or the CHRONOS_USER
// environment variable.
func currentUser(cmd *cobra.Command, a *app) (*model.User, error) {
	username, _ := cmd.Flags().GetString("user")
	if username == "" {
		username = os.Getenv("CHRONOS_USER")
	}
	if username == "" {
		return nil, fmt.Errorf("no user: pass --user or set CHRONOS_USER")
	}
	return resolveUser(cmd.Context(), a, username)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.config/chronos/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	userAddCmd.Flags().String("name", "", "Full name")
	userAddCmd.Flags().String("role", string(model.RoleUser), "Role: user or admin")
	userAddCmd.Flags().String("team", "", "Team ID")
	userAddCmd.Flags().Float64("rate", 0, "Monthly base value")
	userListCmd.Flags().String("team", "", "Filter by team ID")
	for _, c := range []*cobra.Command{userLockCmd, userUnlockCmd} {
		c.Flags().String("actor", "", "Administrator applying the change")
		c.Flags().String("reason", "", "Justification for the change")
	}
	userCmd.AddCommand(userAddCmd, userListCmd, userSetRateCmd, userLockCmd, userUnlockCmd, userPurgeCmd)

	teamAddCmd.Flags().String("description", "", "Team description")
	teamCmd.AddCommand(teamAddCmd, teamListCmd)

	for _, c := range []*cobra.Command{startCmd, pauseCmd, resumeCmd, finishCmd, statusCmd, exceedCmd} {
		c.Flags().String("user", "", "Acting username (default $CHRONOS_USER)")
	}
	startCmd.Flags().String("type", "", "Activity type label")
	exceedCmd.Flags().Duration("by", 0, "How far over the allotted time")

	reportCmd.Flags().String("from", "", "Range start, YYYY-MM-DD (default start of month)")
	reportCmd.Flags().String("to", "", "Range end, YYYY-MM-DD inclusive (default end of month)")
	reportCmd.Flags().Bool("daily", false, "Append per-day totals")

	exportCmd.Flags().String("date", "", "Day to reconcile, YYYY-MM-DD (default today)")
	exportCmd.Flags().String("file", "", "Workbook path (default workbook.path from config)")
	exportCmd.AddCommand(exportSetPasswordCmd)

	inboxCmd.Flags().Bool("ack", false, "Mark listed notifications as read")

	rootCmd.AddCommand(userCmd, teamCmd,
		startCmd, pauseCmd, resumeCmd, finishCmd, statusCmd, exceedCmd,
		reportCmd, exportCmd, watchCmd, inboxCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
