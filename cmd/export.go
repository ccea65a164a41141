package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/internal/export"
)

var (
	exportOut   string
	exportRunID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, exportRunID)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if err := export.WriteLeadsXLSX(exportOut, leads); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.String("path", exportOut),
			zap.Int("leads", len(leads)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "leads.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "only export leads from this run")
	rootCmd.AddCommand(exportCmd)
}
