package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/share"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	saveKey        bool
	credentialPath string
	selections     []string
)

var rankCmd = &cobra.Command{
	Use:   "rank [report-or-url] [fight]",
	Short: "Rank every phase of a fight, or of every kill in the report",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input := cfg.ReportID
		if len(args) > 0 {
			input = args[0]
		}
		code, fightID, ok := fflogs.ParseReportURL(input)
		if !ok {
			return errors.Errorf("not a report link or code: %q", input)
		}
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("fight: %q is not a number", args[1])
			}
			fightID = v
		}

		selection, err := parseSelection(selections)
		if err != nil {
			return err
		}

		credential, err := resolveCredential()
		if err != nil {
			return err
		}

		session := analysis.NewSession(cfg.newReporter()(code, credential), cfg.library(0))

		report, err := session.Report(ctx)
		if err != nil {
			return err
		}

		var fightIDs []int
		if fightID != 0 {
			fightIDs = append(fightIDs, fightID)
		} else {
			for _, fight := range report.Fights {
				if fight.Kill {
					fightIDs = append(fightIDs, fight.ID)
				}
			}
			if len(fightIDs) == 0 {
				return errors.Errorf("report %s has no kill", code)
			}
		}

		out := cmd.OutOrStdout()
		for _, id := range fightIDs {
			res, err := session.RankFight(ctx, id, selection, func(s string) { logrus.Debug(s) })
			if err != nil {
				return err
			}
			printFight(out, res)
		}

		return nil
	},
}

// parseSelection reads phase=dataset pairs.
func parseSelection(pairs []string) (map[int]string, error) {
	r := make(map[int]string, len(pairs))
	for _, pair := range pairs {
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			return nil, errors.Errorf("dataset: %q is not phase=name", pair)
		}
		phase, err := strconv.Atoi(strings.TrimSpace(pair[:idx]))
		if err != nil {
			return nil, errors.Errorf("dataset: %q is not phase=name", pair)
		}
		r[phase] = strings.TrimSpace(pair[idx+1:])
	}
	return r, nil
}

// resolveCredential prefers the configured key and falls back to the saved one. With
// --save-key a configured key is written for later runs.
func resolveCredential() (string, error) {
	if cfg.APIKey != "" {
		if saveKey {
			err := share.SaveCredential(credentialPath, cfg.APIKey)
			if err != nil {
				return "", err
			}
		}
		return cfg.APIKey, nil
	}

	credential, err := share.LoadCredential(credentialPath)
	if err != nil {
		return "", err
	}
	if credential == "" {
		return "", errors.WithStack(fflogs.ErrMissingCredential)
	}
	return credential, nil
}

func printFight(w io.Writer, res *analysis.FightResult) {
	fmt.Fprintf(w, "%s - %s (fight %d)\n", res.Title, res.Fight.Name, res.Fight.ID)

	for _, phase := range res.Phases {
		fmt.Fprintf(w, "\n%s\n", phase.Phase.Name)
		if phase.Err != nil {
			fmt.Fprintf(w, "  error: %s\n", phase.Error)
			continue
		}

		datasetName := "no dataset"
		if phase.Dataset != nil {
			datasetName = phase.Dataset.Name
		}
		fmt.Fprintf(w, "  %s, %ss\n", datasetName, humanize.FtoaWithDigits(phase.Duration/1000, 1))

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "  NAME\tJOB\trDPS\taDPS\tnDPS\tRANKED\tLOGS\t")
		for _, p := range phase.Players {
			logs := "-"
			if p.Percentile != nil {
				logs = analysis.Label(*p.Percentile)
			}
			fmt.Fprintf(
				tw,
				"  %s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				p.Name,
				p.Role,
				humanize.CommafWithDigits(p.Rates.Reduced, 1),
				humanize.CommafWithDigits(p.Rates.Adjusted, 1),
				humanize.CommafWithDigits(p.Rates.Normal, 1),
				humanize.CommafWithDigits(p.RankRate, 1),
				logs,
			)
		}
		tw.Flush()
	}
}

func init() {
	rankCmd.Flags().BoolVar(&saveKey, "save-key", false, "Save --api-key for later runs")
	rankCmd.Flags().StringVar(&credentialPath, "credential-file", share.DefaultCredentialPath(), "Where --save-key keeps the api key")
	rankCmd.Flags().StringArrayVar(&selections, "dataset", nil, "phase=name: rank the phase with the named dataset")
	rootCmd.AddCommand(rankCmd)
}
