package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hazard-cli/internal/model"
)

var exportRunID string

var exportCmd = &cobra.Command{
	Use:   "export <model.yaml>",
	Short: "Export a source model to postgres",
	Long:  "Loads a source model, enumerates every rupture, and writes source-set summaries and rupture rows to postgres.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		m, err := model.LoadModel(args[0], &cfg.Calc, zap.L())
		if err != nil {
			return err
		}

		runID := exportRunID
		if runID == "" {
			runID = uuid.New().String()
		}
		if err := exportModel(ctx, m, runID); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("model", m.Name()),
			zap.String("run_id", runID))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run-id", "", "tag exported rows with an existing run id")
	rootCmd.AddCommand(exportCmd)
}
