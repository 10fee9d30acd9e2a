package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hazard-cli/internal/model"
)

var modelCmd = &cobra.Command{
	Use:   "model <model.yaml>",
	Short: "Load and summarize a source model",
	Long:  "Parses a model definition, builds every source set, and prints a summary of what the model contains.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("model"); err != nil {
			return err
		}

		m, err := model.LoadModel(args[0], &cfg.Calc, zap.L())
		if err != nil {
			return err
		}

		formatModelSummary(os.Stdout, m)
		return nil
	},
}

// formatModelSummary writes a tabular overview of the model's source sets.
func formatModelSummary(out io.Writer, m *model.HazardModel) {
	fmt.Fprintf(out, "Model: %s\n\n", m.Name())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tNAME\tID\tWEIGHT\tSOURCES")
	_, _ = fmt.Fprintln(w, "----\t----\t--\t------\t-------")

	var sets, sources int
	for _, set := range m.All() {
		sets++
		sources += set.Size()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%d\n",
			set.Type(), set.Name(), set.ID(), set.Weight(), set.Size())
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%d source sets, %d sources\n", sets, sources)
}

func init() {
	rootCmd.AddCommand(modelCmd)
}
