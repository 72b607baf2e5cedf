package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/jd"
	"github.com/spigell/ats-scorer/internal/pipeline"
	"github.com/spigell/ats-scorer/internal/scoring"
)

var errNoTitle = errors.New("job title is required: pass --title or run in a terminal to choose one")

var scoreCmd = &cobra.Command{
	Use:   "score <resume.pdf|resume.docx>",
	Short: "Score a resume against the job dataset or a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, config, log, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context(), config)
		defer cancel()

		title, _ := cmd.Flags().GetString("title")
		level, _ := cmd.Flags().GetString("level")
		jdFile, _ := cmd.Flags().GetString("jd")
		out, _ := cmd.Flags().GetString("out")

		var res *scoring.Result
		if jdFile != "" {
			text, err := readText(cmd.InOrStdin(), jdFile)
			if err != nil {
				return err
			}
			res, _, err = svc.ScoreAgainst(ctx, args[0], text)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out, res)
		}

		if title == "" {
			if title, err = chooseTitle(svc); err != nil {
				return err
			}
			log.Debug("job title selected", zap.String("job_title", title))
		}

		res, err = svc.Score(ctx, args[0], title, level)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out, res)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("title", "t", "", "job title to look up in the dataset (prompted when empty)")
	scoreCmd.Flags().StringP("level", "l", "", "experience level to narrow the dataset lookup")
	scoreCmd.Flags().String("jd", "", "score against a free-text job description file instead of the dataset ('-' reads stdin)")
	scoreCmd.Flags().StringP("out", "o", "", "write the result to a file instead of stdout")
}

// chooseTitle asks for one of the dataset titles when stdin is a terminal.
func chooseTitle(svc *pipeline.Service) (string, error) {
	titles := svc.JobTitles()
	if len(titles) == 0 || !isTerminal(os.Stdin) {
		return "", errNoTitle
	}

	prompt := promptui.Select{
		Label:    "Choose a job title",
		Items:    titles,
		Size:     10,
		Searcher: titleSearcher(titles),
	}

	_, title, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return title, nil
}

// titleSearcher filters titles the same way the dataset lookup matches them.
func titleSearcher(titles []string) func(string, int) bool {
	return func(input string, index int) bool {
		query := jd.NormalizeQuery(input)
		return query == "" || strings.Contains(jd.NormalizeQuery(titles[index]), query)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
