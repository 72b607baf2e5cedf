package cmd

import (
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf|resume.docx>",
	Short: "Parse a resume and print the extracted record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, config, _, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context(), config)
		defer cancel()

		rec, err := svc.ParseResume(ctx, args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		return writeJSON(cmd.OutOrStdout(), out, rec)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("out", "o", "", "write the result to a file instead of stdout")
}
