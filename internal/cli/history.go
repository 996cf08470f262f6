package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/prr-network/prr/internal/daemon"
	"github.com/prr-network/prr/internal/domain"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("config", "c", "", "Path to config.toml (default $PRR_CONFIG)")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show (0 = all)")
}

var historyCmd = &cobra.Command{
	Use:   "history TERMINAL_ID",
	Short: "Show a terminal's ledger",
	Long: `Print a terminal's ledger entries, newest first, straight from the
configured backend. Only persistent backends (sqlite, redis) have history
outside a running server.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	flag, _ := cmd.Flags().GetString("config")
	limit, _ := cmd.Flags().GetInt("limit")
	id := domain.TerminalID(args[0])

	cfg, err := daemon.Load(daemon.ConfigPath(flag))
	if err != nil {
		return err
	}
	if cfg.Ledger.Backend == daemon.BackendMemory {
		return fmt.Errorf("ledger backend is %q; history needs sqlite or redis", cfg.Ledger.Backend)
	}

	ctx := cmd.Context()
	ledger, err := daemon.OpenLedger(ctx, cfg.Ledger)
	if err != nil {
		return err
	}
	defer ledger.Close()

	entries, err := ledger.History(ctx, id, limit)
	if err != nil {
		return err
	}
	tot, err := ledger.Totals(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.EntryType, e.Amount, e.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\ncharged %d  paid %d  net %d  communications %d\n",
		tot.Charged, tot.Paid, tot.Net(), tot.Communications)
	return nil
}
