package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or reset the processed-postings ledger",
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many postings the ledger remembers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ledger"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		led, err := openLedger(ctx, st)
		if err != nil {
			return err
		}
		defer led.Close() //nolint:errcheck

		stats, err := led.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "ledger stats")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all processed postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ledger"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		led, err := openLedger(ctx, st)
		if err != nil {
			return err
		}
		defer led.Close() //nolint:errcheck

		n, err := led.Clear(ctx)
		if err != nil {
			return eris.Wrap(err, "ledger clear")
		}

		zap.L().Info("ledger cleared", zap.Int64("removed", n))
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerStatsCmd)
	ledgerCmd.AddCommand(ledgerClearCmd)
	rootCmd.AddCommand(ledgerCmd)
}
