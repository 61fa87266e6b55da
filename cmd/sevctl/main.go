// Command sevctl checks the reference catalog and scores accident files from
// the command line, using the same configuration as the server.
package main

import (
	"fmt"
	"os"

	"accidentsev/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	refPath   string
	metaPath  string
	modelPath string
	modelURL  string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sevctl",
		Short:         "Accident severity tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.refPath, "ref", "", "reference options file (default REF_OPTIONS_PATH)")
	root.PersistentFlags().StringVar(&opts.metaPath, "meta", "", "model metadata file (default META_PATH)")
	root.PersistentFlags().StringVar(&opts.modelPath, "model", "", "scorecard artifact (default MODEL_PATH)")
	root.PersistentFlags().StringVar(&opts.modelURL, "model-url", "", "remote model server (default MODEL_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log model loading")

	root.AddCommand(newCatalogCmd(opts), newPredictCmd(opts), newHistoryCmd(opts))
	return root
}

// config returns the environment configuration with flag overrides applied
func (o *options) config() *config.Config {
	cfg := config.Load()
	if o.refPath != "" {
		cfg.RefOptionsPath = o.refPath
	}
	if o.metaPath != "" {
		cfg.Model.MetaPath = o.metaPath
	}
	if o.modelPath != "" {
		cfg.Model.ModelPath = o.modelPath
	}
	if o.modelURL != "" {
		cfg.Model.ModelURL = o.modelURL
	}
	return cfg
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
