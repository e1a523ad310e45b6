package cmd

import (
	"time"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/analysis/analysispool"
	"fflogs_phase_ranker/frontend"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var datasetExpires time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranking api and the queued ranking page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := cfg.library(datasetExpires)
		newClient := cfg.newReporter()
		newReporter := func(reportID, credential string) analysis.Reporter {
			return newClient(reportID, credential)
		}

		pool := analysispool.New(analysispool.Options{
			NewReporter: newReporter,
			Datasets:    lib,
			Cache:       cfg.storage("results", 10*time.Minute),
		})

		g := gin.New()
		g.Use(gin.Logger())

		frontend.Route(g, frontend.Options{
			Library:         lib,
			NewReporter:     newReporter,
			Pool:            pool,
			RecaptchaSecret: cfg.Recaptcha,
		})

		logrus.Infof("listening on %s", cfg.Listen)
		return errors.WithStack(g.Run(cfg.Listen))
	},
}

func init() {
	serveCmd.Flags().DurationVar(&datasetExpires, "dataset-expires", 10*time.Minute, "Reload the dataset catalog after this long, 0 to keep it")
	rootCmd.AddCommand(serveCmd)
}
