package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"fflogs_phase_ranker/dataset"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var datasetName string

var datasetsCmd = &cobra.Command{
	Use:   "datasets [encounter] [phase]",
	Short: "List the dataset catalog, or the datasets that apply to a phase",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cfg.library(0).Catalog(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		switch {
		case datasetName != "":
			d, ok := catalog.Find(datasetName)
			if !ok {
				return errors.Errorf("no dataset named %q", datasetName)
			}
			printDescriptors(out, []*dataset.Descriptor{d})

		case len(args) == 2:
			phase, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("phase: %q is not a number", args[1])
			}
			printDescriptors(out, catalog.Resolve(args[0], phase))

		case len(args) == 1:
			fmt.Fprintf(out, "%s: phases %v\n", args[0], catalog.Phases(args[0]))

		default:
			for _, encounter := range catalog.Encounters() {
				fmt.Fprintf(out, "%s: phases %v\n", encounter, catalog.Phases(encounter))
			}
		}

		return nil
	},
}

func printDescriptors(w io.Writer, descriptors []*dataset.Descriptor) {
	if len(descriptors) == 0 {
		fmt.Fprintln(w, "no dataset applies")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tPHASE\tMODE\tCAP\tFILE")
	for _, d := range descriptors {
		limit := "-"
		if d.UpperCombatTime > 0 {
			limit = humanize.FtoaWithDigits(d.UpperCombatTime/1000, 1) + "s"
		}
		fmt.Fprintf(
			tw,
			"%s\t%s\t%d\t%d\t%s\t%s\n",
			d.Name, d.CreatedAt.Format("2006-01-02"), d.Phase, d.CalculationMode, limit, d.DataFile,
		)
	}
	tw.Flush()
}

func init() {
	datasetsCmd.Flags().StringVar(&datasetName, "name", "", "Show the dataset with this name")
	rootCmd.AddCommand(datasetsCmd)
}
