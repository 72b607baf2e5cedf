package cmd

import (
	"github.com/spf13/cobra"
)

var jdCmd = &cobra.Command{
	Use:   "jd [job-description.txt|-]",
	Short: "Parse a free-text job description and print it as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		text, err := readText(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}

		svc, _, _, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		return writeJSON(cmd.OutOrStdout(), out, svc.ParseJobDescription(text))
	},
}

func init() {
	rootCmd.AddCommand(jdCmd)

	jdCmd.Flags().StringP("out", "o", "", "write the result to a file instead of stdout")
}
