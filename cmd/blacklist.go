package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var blacklistReason string

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage companies excluded from every run",
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show blacklisted companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("blacklist"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.ListBlacklist(ctx)
		if err != nil {
			return eris.Wrap(err, "list blacklist")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <company>",
	Short: "Exclude a company from all future runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("blacklist"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company := strings.Join(args, " ")
		if err := st.AddToBlacklist(ctx, company, blacklistReason); err != nil {
			return eris.Wrap(err, "add to blacklist")
		}

		zap.L().Info("company blacklisted", zap.String("company", company))
		return nil
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <company>",
	Short: "Allow a company again",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("blacklist"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company := strings.Join(args, " ")
		if err := st.RemoveFromBlacklist(ctx, company); err != nil {
			return eris.Wrap(err, "remove from blacklist")
		}

		zap.L().Info("company removed from blacklist", zap.String("company", company))
		return nil
	},
}

func init() {
	blacklistAddCmd.Flags().StringVar(&blacklistReason, "reason", "", "why this company is excluded")
	blacklistCmd.AddCommand(blacklistListCmd)
	blacklistCmd.AddCommand(blacklistAddCmd)
	blacklistCmd.AddCommand(blacklistRemoveCmd)
	rootCmd.AddCommand(blacklistCmd)
}
