package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/taskmaster/tasklist/internal/adapters/client"
	"github.com/taskmaster/tasklist/internal/adapters/tui"
	"github.com/taskmaster/tasklist/internal/application/tracker"
	"github.com/taskmaster/tasklist/internal/infrastructure/config"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/infrastructure/server"
	"github.com/taskmaster/tasklist/internal/ports"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the task list server",
		Long:  "Serve the task document over GET/PUT /tasks along with the static front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Server.Port = port
			}
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				cfg.Storage.Path = file
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides config)")
	cmd.Flags().String("file", "", "task document path (overrides config)")
	return cmd
}

// NewTUICommand creates the interactive client command
func NewTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit tasks in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if url, _ := cmd.Flags().GetString("server"); url != "" {
				cfg.Client.ServerURL = url
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("server", "", "server base URL (overrides config)")
	return cmd
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the active tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if url, _ := cmd.Flags().GetString("server"); url != "" {
				cfg.Client.ServerURL = url
			}

			sortBy, _ := cmd.Flags().GetString("sort")
			col, err := tracker.ParseColumn(sortBy)
			if err != nil {
				return err
			}
			order := tracker.Ascending
			if desc, _ := cmd.Flags().GetBool("desc"); desc {
				order = tracker.Descending
			}

			return runList(cmd.Context(), cfg, col, order, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("server", "", "server base URL (overrides config)")
	cmd.Flags().String("sort", "due", "sort column: task, created, category, priority, due, completed or resurrect")
	cmd.Flags().Bool("desc", false, "sort descending")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tasklist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasklist %s\n", Version)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infow("Starting task list server",
			"port", cfg.Server.Port,
			"environment", cfg.App.Environment,
		)
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newController wires the HTTP client to a sync controller.
func newController(cfg *config.Config, appLogger *logger.Logger) (*tracker.Controller, error) {
	loc, err := cfg.Client.Location()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: cfg.Client.RequestTimeout}
	transport := client.NewTaskClient(cfg.Client.ServerURL, httpClient, appLogger)
	return tracker.NewController(transport, ports.SystemClock{}, loc, appLogger), nil
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	// The terminal belongs to the UI; logs go to a file.
	logCfg := cfg.Logger
	logCfg.Output = "file"
	logCfg.Filename = cfg.Client.LogFile
	if logCfg.Filename == "" {
		logCfg.Filename = os.DevNull
	}
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	ctrl, err := newController(cfg, appLogger)
	if err != nil {
		return err
	}
	return tui.Run(ctx, ctrl, appLogger, cfg.Client.RequestTimeout)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)

func runList(ctx context.Context, cfg *config.Config, col tracker.Column, order tracker.SortOrder, out io.Writer) error {
	logCfg := cfg.Logger
	logCfg.Level = "error"
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	ctrl, err := newController(cfg, appLogger)
	if err != nil {
		return err
	}
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	ctrl.SortBy(col, order)

	_, err = fmt.Fprintln(out, renderList(ctrl))
	return err
}

func renderList(ctrl *tracker.Controller) string {
	loc := ctrl.Form().Location()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("TASK", "CATEGORY", "PRIORITY", "DUE", "RESURRECT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range ctrl.Table().Rows() {
		task, ok := ctrl.State().Task(r.ID)
		if !ok {
			continue
		}
		due := tracker.FormatDueDate(task.DueTime, loc)
		if due == "" {
			due = "-"
		}
		t.Row(r.Label(), task.Category, strconv.Itoa(int(task.Priority)), due, strconv.Itoa(int(task.DaysToResurrect)))
	}
	return t.String()
}
