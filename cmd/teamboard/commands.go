package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/team-board/internal/assign"
	"github.com/hochfrequenz/team-board/internal/config"
	"github.com/hochfrequenz/team-board/internal/dashboard"
	"github.com/hochfrequenz/team-board/internal/domain"
	"github.com/hochfrequenz/team-board/internal/notify"
	"github.com/hochfrequenz/team-board/internal/observer"
	"github.com/hochfrequenz/team-board/internal/report"
	"github.com/hochfrequenz/team-board/internal/seed"
	"github.com/hochfrequenz/team-board/internal/teamstore"
	"github.com/hochfrequenz/team-board/tui"
	"github.com/hochfrequenz/team-board/web/ui"
)

var (
	listStatus string
	servePort  int
	reportDate string
)

func init() {
	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)

	// status command
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show board summary",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	// list command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	rootCmd.AddCommand(listCmd)

	// assign command
	assignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Run one auto-assignment cycle",
		RunE:  runAssign,
	}
	rootCmd.AddCommand(assignCmd)

	// report command
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily markdown report",
		RunE:  runReport,
	}
	reportCmd.Flags().StringVar(&reportDate, "date", "", "report date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(reportCmd)

	// seed command
	seedCmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Import agents, projects and tasks from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeed,
	}
	rootCmd.AddCommand(seedCmd)

	// watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the database and print the summary on change",
		RunE:  runWatch,
	}
	rootCmd.AddCommand(watchCmd)

	// tui command
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal dashboard",
		RunE:  runTUI,
	}
	rootCmd.AddCommand(tuiCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func openStore() (*teamstore.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := teamstore.Open(cfg.General.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// openStoreReadOnly is for commands that only read: a missing database
// is reported instead of being created empty.
func openStoreReadOnly() (*teamstore.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := teamstore.OpenReadOnly(cfg.General.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.Notifications.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}
	if cfg.Notifications.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.Notifications.WebhookURL))
	}
	if len(notifiers) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(notifiers...)
}

func runServe(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	port := servePort
	if port == 0 {
		port = cfg.Web.Port
	}
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)

	server := ui.NewServer(store, store, cfg.Web.KanbanRefreshSeconds, cfg.Web.TableRefreshSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Dashboard at http://%s\n", addr)
		return server.ListenAndServe(ctx, addr)
	})

	if cfg.Assign.Enabled {
		notifier := buildNotifier(cfg)
		engine := assign.NewEngine(store)
		sched, err := assign.NewScheduler(engine, cfg.Assign.Cron, func(r *assign.Result) {
			notifier.Send(notify.Notification{
				Title:   "Auto-assignment",
				Message: r.Summary(),
				Type:    notify.NotifyInfo,
			})
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			fmt.Printf("Auto-assign enabled (%s), next run %s\n",
				cfg.Assign.Cron, sched.NextRun().Format("15:04"))
			return sched.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Tasks: %d total | %d todo | %d in progress | %d done | %d blocked\n",
		stats.TotalTasks, stats.TodoTasks, stats.InProgressTasks,
		stats.CompletedTasks, stats.BlockedTasks)
	fmt.Printf("Agents: %d total | %d active | %d idle\n",
		stats.TotalAgents, stats.ActiveAgents, stats.IdleAgents)
	fmt.Printf("Projects: %d total | %d active\n", stats.TotalProjects, stats.ActiveProjects)
	fmt.Printf("Avg progress: %d%% | due today: %d | overdue: %d\n",
		stats.AvgProgress, stats.DueToday, stats.OverdueTasks)

	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	var tasks []domain.Task
	if listStatus != "" {
		if !domain.ValidTaskStatus(listStatus) {
			return fmt.Errorf("unknown status %q", listStatus)
		}
		tasks, err = store.TasksByStatus(domain.TaskStatus(listStatus))
	} else {
		tasks, err = store.Tasks()
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tDUE\tASSIGNEE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d%%\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.Priority, t.Progress,
			orDash(t.DueDate), orDash(t.AssigneeName))
	}
	w.Flush()

	return nil
}

func runAssign(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := assign.NewEngine(store)
	result, err := engine.Run()
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())

	if result.Assigned > 0 || result.Started > 0 {
		buildNotifier(cfg).Send(notify.Notification{
			Title:   "Auto-assignment",
			Message: result.Summary(),
			Type:    notify.NotifyInfo,
		})
	}

	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	date := time.Now()
	if reportDate != "" {
		date, err = time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", reportDate, err)
		}
	}

	md, err := report.Daily(store, date)
	if err != nil {
		return err
	}
	fmt.Print(md)

	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := seed.Load(args[0])
	if err != nil {
		return err
	}

	result, err := seed.Apply(store, f)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d agents, %d projects, %d tasks\n",
		result.Agents, result.Projects, result.Tasks)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	printStats := func() {
		stats, err := store.Stats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "stats: %v\n", err)
			return
		}
		fmt.Printf("[%s] %d tasks | %d in progress | %d blocked | %d/%d agents active\n",
			time.Now().Format("15:04:05"), stats.TotalTasks, stats.InProgressTasks,
			stats.BlockedTasks, stats.ActiveAgents, stats.TotalAgents)
	}

	watcher, err := observer.NewDBWatcher(cfg.General.DatabasePath, printStats)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s\n", cfg.General.DatabasePath)
	printStats()
	watcher.Start(ctx)

	<-ctx.Done()
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, _, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer store.Close()

	model := tui.NewModel(func() (*dashboard.Snapshot, error) {
		return dashboard.Load(store)
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
