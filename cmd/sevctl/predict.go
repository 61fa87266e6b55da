package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"accidentsev/internal/app"
	"accidentsev/internal/normalize"

	"github.com/spf13/cobra"
)

func newPredictCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one accident description read from a JSON file",
		Long: `Reads {"data": {...}} or the bare field object from a file ("-" for
stdin), loads the model and prints the prediction as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			core, err := app.New(opts.config(), opts.logger())
			if err != nil {
				return err
			}
			if err := core.Scorer.Load(cmd.Context(), core.Loader); err != nil {
				return fmt.Errorf("load model: %w", err)
			}

			res, err := core.Predictions.Predict(cmd.Context(), "", raw)
			if err != nil {
				printRejection(cmd.ErrOrStderr(), err)
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input JSON file, - for stdin")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (map[string]any, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return normalize.RequestData(body), nil
}

func printRejection(w io.Writer, err error) {
	var missing *normalize.MissingFieldsError
	if errors.As(err, &missing) {
		fmt.Fprintf(w, "%s: %v\n%s\n", missing.Summary(), missing.Fields, missing.Hint())
		return
	}
	var fe normalize.FieldError
	if errors.As(err, &fe) {
		fmt.Fprintf(w, "%s (%s = %v)\n%s\n", fe.Summary(), fe.FieldName(), fe.FieldValue(), fe.Hint())
	}
}
