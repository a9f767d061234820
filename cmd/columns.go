package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/keyword-gap/internal/ingest"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Print the columns every ranking export must carry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		printColumns(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func printColumns(out io.Writer) {
	for i, col := range ingest.RequiredColumns {
		_, _ = fmt.Fprintf(out, "%2d  %s\n", i+1, col)
	}
}
