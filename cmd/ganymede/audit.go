package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
)

var auditFlags struct {
	stateID   string
	timeRange string
	db        string
	format    string
	output    string
	failures  bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit ledger",
	Long: `Inspect the append-only audit ledger.

Every execution the engine performs leaves exactly one ledger entry,
successful or not. The audit command queries those entries for
compliance review and incident analysis.

Examples:
  # All attempts against a state
  ganymede audit query --state-id order-42

  # Failed attempts in a time window
  ganymede audit query --state-id order-42 --failures \
    --time-range "2026-08-01T00:00:00Z/2026-08-24T00:00:00Z"

  # Export to JSON
  ganymede audit query --state-id order-42 --format json -o audit.json`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit ledger entries",
	Long: `Query audit ledger entries by state id and time range.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-24T00:00:00Z"`,
	RunE: queryAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.stateID, "state-id", "", "state id to query (required)")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.db, "db", "", "sqlite database path (overrides config)")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
	auditQueryCmd.Flags().BoolVar(&auditFlags.failures, "failures", false, "show only failed executions")
	auditQueryCmd.MarkFlagRequired("state-id")
	auditQueryCmd.RegisterFlagCompletionFunc("format", formatCompletion("text", "json", "csv"))
}

// openLedger builds the ledger from the --db override or the config file.
func openLedger() (audit.Ledger, error) {
	if auditFlags.db != "" {
		sqliteCfg := audit.DefaultSQLiteConfig()
		sqliteCfg.Path = auditFlags.db
		return audit.NewSQLiteLedger(sqliteCfg)
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewStoreError("audit", "failed to load config", err)
	}
	if cfg.Audit.Backend == config.BackendMemory {
		return nil, cli.NewStoreError("audit",
			"memory ledgers are per-process; point --db or the config at a sqlite ledger", nil)
	}
	return cfg.BuildAuditLedger()
}

// parseTimeRange parses an RFC3339 "start/end" interval.
func parseTimeRange(s string) (*time.Time, *time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}
	from, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}
	to, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}
	return &from, &to, nil
}

// outputWriter resolves the -o flag, defaulting to stdout.
func outputWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	query := audit.Query{StateID: auditFlags.stateID}
	if auditFlags.timeRange != "" {
		query.From, query.To, err = parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return err
		}
	}

	ctx := cli.SetupSignalHandler()
	entries, err := ledger.Query(ctx, query)
	if err != nil {
		return cli.NewQueryError("audit query", auditFlags.stateID, err)
	}

	if auditFlags.failures {
		failed := entries[:0]
		for _, e := range entries {
			if !e.IsSuccess {
				failed = append(failed, e)
			}
		}
		entries = failed
	}

	w, closeOutput, err := outputWriter(auditFlags.output)
	if err != nil {
		return err
	}
	defer closeOutput()

	switch cli.OutputFormat(auditFlags.format) {
	case cli.FormatJSON:
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, entries)

	case cli.FormatCSV:
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.Timestamp.Format(time.RFC3339),
				e.ExecutionID,
				e.Intent.Operation,
				string(e.Context.Mode),
				e.Context.Actor.ID,
				strconv.FormatBool(e.IsSuccess),
				e.ErrorMessage,
			})
		}
		f := &cli.CSVFormatter{Headers: []string{
			"timestamp", "execution_id", "operation", "mode", "actor", "success", "error",
		}}
		return f.FormatTo(w, rows)

	default:
		if len(entries) == 0 {
			fmt.Fprintln(w, "No audit entries found.")
			return nil
		}
		fmt.Fprintf(w, "State: %s (%d entries)\n\n", auditFlags.stateID, len(entries))
		for _, e := range entries {
			status := "ok"
			if !e.IsSuccess {
				status = "FAILED: " + e.ErrorMessage
			}
			fmt.Fprintf(w, "%s  %s  %s/%s  actor=%s  %s\n",
				e.Timestamp.Format(time.RFC3339),
				e.ExecutionID,
				e.Intent.Operation,
				e.Context.Mode,
				e.Context.Actor.ID,
				status,
			)
			if verbose && e.Changes != nil {
				for _, c := range e.Changes.Changes() {
					fmt.Fprintf(w, "    %s: %v -> %v\n", c.Path, c.Before, c.After)
				}
			}
		}
		return nil
	}
}
