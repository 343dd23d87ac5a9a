package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bcup-go/internal/app"
	"bcup-go/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "bcup",
	Short: "Periodic directory snapshot daemon",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backup daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return a.Run(ctx)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run every job once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.RunOnce()
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Add [[sources]] entries before starting the daemon.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Name Format: %s\n", cfg.NameFormat)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("History:     %s\n", cfg.History.Type)
		for _, sc := range cfg.Sources {
			fmt.Printf("\nSource: %s\n", sc.Source)
			fmt.Printf("  Target:   %s\n", sc.Target)
			fmt.Printf("  Period:   %s\n", sc.Period)
			fmt.Printf("  Method:   %s\n", sc.Method)
			fmt.Printf("  Compress: %v\n", sc.Compress)
			if sc.Limit > 0 {
				fmt.Printf("  Limit:    %d\n", sc.Limit)
			}
		}
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots per job",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, job := range a.Jobs() {
			snaps, err := a.Snapshots(job)
			if err != nil {
				return fmt.Errorf("listing snapshots for %s: %w", job.ID, err)
			}

			fmt.Printf("%s (%s, every %s): %d snapshot(s)\n", job.ID, job.Method, job.Period, len(snaps))
			for _, s := range snaps {
				compressed := ""
				if s.Compressed {
					compressed = "  [compressed]"
				}
				fmt.Printf("  %s%s\n", s.Name, compressed)
			}
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, rec := range recs {
			detail := rec.SnapshotName
			if rec.Status == "failed" {
				detail = rec.ErrorKind
			}
			fmt.Printf("%s  %-40s  %-9s  +%d ~%d -%d  %s\n",
				rec.StartedAt.Format("2006-01-02 15:04:05"),
				rec.JobID,
				rec.Status,
				rec.Added, rec.Modified, rec.Removed,
				detail,
			)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
