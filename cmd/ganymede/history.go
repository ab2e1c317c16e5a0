package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/history"
)

var historyFlags struct {
	stateID string
	db      string
	limit   int
	path    string
	format  string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect per-state mutation history",
	Long: `Inspect the hash-chained mutation history of a state.

History records only successful committed mutations. Entries form a
hash chain, so tampering with any recorded mutation is detectable.

Examples:
  # Full history of a state
  ganymede history show --state-id order-42

  # The last five mutations
  ganymede history show --state-id order-42 --limit 5

  # Verify the hash chain
  ganymede history verify --state-id order-42

  # Changes recorded at one path over time
  ganymede history timeline --state-id order-42 --path items.total`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the mutation history of a state",
	RunE:  showHistory,
}

var historyVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the history hash chain of a state",
	RunE:  verifyHistory,
}

var historyTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the change timeline for a state path",
	RunE:  showTimeline,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyVerifyCmd, historyTimelineCmd)

	for _, c := range []*cobra.Command{historyShowCmd, historyVerifyCmd, historyTimelineCmd} {
		c.Flags().StringVar(&historyFlags.stateID, "state-id", "", "state id (required)")
		c.Flags().StringVar(&historyFlags.db, "db", "", "sqlite database path (overrides config)")
		c.MarkFlagRequired("state-id")
	}
	historyShowCmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "show only the most recent N entries")
	historyShowCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
	historyShowCmd.RegisterFlagCompletionFunc("format", formatCompletion("text", "json"))
	historyTimelineCmd.Flags().StringVar(&historyFlags.path, "path", "", "state path (required)")
	historyTimelineCmd.MarkFlagRequired("path")
}

// openHistoryStore builds the store from the --db override or the config
// file.
func openHistoryStore() (history.Store, error) {
	if historyFlags.db != "" {
		sqliteCfg := history.DefaultSQLiteConfig()
		sqliteCfg.Path = historyFlags.db
		return history.NewSQLiteStore(sqliteCfg)
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewStoreError("history", "failed to load config", err)
	}
	if cfg.History.Backend == config.BackendMemory {
		return nil, cli.NewStoreError("history",
			"memory stores are per-process; point --db or the config at a sqlite store", nil)
	}
	return cfg.BuildHistoryStore()
}

func showHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()

	var entries []*history.Entry
	if historyFlags.limit > 0 {
		entries, err = store.GetRecent(ctx, historyFlags.stateID, historyFlags.limit)
	} else {
		var h *history.History
		h, err = store.Get(ctx, historyFlags.stateID)
		if h != nil {
			entries = h.Entries
		}
	}
	if err != nil {
		return cli.NewQueryError("history show", historyFlags.stateID, err)
	}

	if cli.OutputFormat(historyFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}
	fmt.Printf("State: %s (%d entries)\n\n", historyFlags.stateID, len(entries))
	for _, e := range entries {
		fmt.Printf("%s  %s  %s  actor=%s  changes=%d  took=%s\n",
			e.Timestamp.Format(time.RFC3339),
			e.ExecutionID,
			e.Intent.Operation,
			e.Context.Actor.ID,
			e.Changes.Len(),
			e.ExecutionTime,
		)
		if verbose {
			for _, c := range e.Changes.Changes() {
				fmt.Printf("    %s: %v -> %v\n", c.Path, c.Before, c.After)
			}
		}
	}
	return nil
}

func verifyHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	h, err := store.Get(ctx, historyFlags.stateID)
	if err != nil {
		return cli.NewQueryError("history verify", historyFlags.stateID, err)
	}
	if h.Len() == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	if err := h.Verify(); err != nil {
		return fmt.Errorf("hash chain broken for %s: %w", historyFlags.stateID, err)
	}
	fmt.Printf("✓ %d entries, hash chain intact\n", h.Len())
	return nil
}

func showTimeline(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	h, err := store.Get(ctx, historyFlags.stateID)
	if err != nil {
		return cli.NewQueryError("history timeline", historyFlags.stateID, err)
	}

	points := h.TimelineForPath(historyFlags.path)
	if len(points) == 0 {
		fmt.Println("No changes recorded at this path.")
		return nil
	}
	fmt.Printf("Path %s on %s (%d changes)\n\n", historyFlags.path, historyFlags.stateID, len(points))
	for _, p := range points {
		fmt.Printf("%s  %v -> %v  actor=%s",
			p.Timestamp.Format(time.RFC3339),
			p.Change.Before,
			p.Change.After,
			p.ActorID,
		)
		if p.Reason != "" {
			fmt.Printf("  (%s)", p.Reason)
		}
		fmt.Println()
	}
	return nil
}
