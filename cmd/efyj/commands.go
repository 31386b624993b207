package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	efyj "github.com/quesnel/efyj-go"
	"github.com/quesnel/efyj-go/csvoptions"
	"github.com/quesnel/efyj-go/internal/obslog"
	"github.com/quesnel/efyj-go/xmlmodel"
)

func newExtractCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <model.dxi> [options.csv]",
		Short: "print a model's options matrix as CSV",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			dxi, csvArgs := classifyArgs(args)
			modelPath, err := requireModelPath(dxi)
			if err != nil {
				return err
			}

			data, err := efyj.ExtractOptions(modelPath, firstOf(csvArgs))
			if err != nil {
				return err
			}

			m, err := xmlmodel.Read(modelPath)
			if err != nil {
				return err
			}
			if out != "" {
				return csvoptions.Write(out, data, m)
			}
			return csvoptions.WriteTo(os.Stdout, data, m)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the CSV to this path instead of stdout")
	return cmd
}

func newMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <model.dxi> <out.dxi> <options.csv>",
		Short: "write a model whose embedded options are replaced by a CSV options matrix",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			dxi, csvArgs := classifyArgs(args)
			if len(dxi) < 2 {
				return fmt.Errorf("merge requires an input and an output .dxi file")
			}
			if len(csvArgs) < 1 {
				return fmt.Errorf("merge requires an options .csv file")
			}

			m, err := xmlmodel.Read(dxi[0])
			if err != nil {
				return err
			}
			data, err := csvoptions.Read(csvArgs[0], m)
			if err != nil {
				return err
			}
			return efyj.MergeOptions(dxi[0], dxi[1], data)
		},
	}
	return cmd
}

func newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <model.dxi> [options.csv]",
		Short: "evaluate an options matrix and report both weighted kappas",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			dxi, csvArgs := classifyArgs(args)
			modelPath, err := requireModelPath(dxi)
			if err != nil {
				return err
			}

			data, err := efyj.ExtractOptions(modelPath, firstOf(csvArgs))
			if err != nil {
				return err
			}
			result, err := efyj.Evaluate(modelPath, data)
			if err != nil {
				return err
			}

			for i := range result.Simulated {
				fmt.Printf("row %d: simulated=%d observed=%d\n", i, result.Simulated[i], result.Observed[i])
			}
			fmt.Printf("linear kappa:  %.4f\n", result.LinearKappa)
			fmt.Printf("squared kappa: %.4f\n", result.SquaredKappa)
			return nil
		},
	}
	return cmd
}

func newAdjustmentCommand(resolved func() searchFlags, logger *obslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjustment <model.dxi> <options.csv>",
		Short: "search for the modifier set maximising kappa against the whole options matrix",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			dxi, csvArgs := classifyArgs(args)
			modelPath, err := requireModelPath(dxi)
			if err != nil {
				return err
			}
			if len(csvArgs) == 0 {
				return fmt.Errorf("adjustment requires an options .csv file")
			}

			m, err := xmlmodel.Read(modelPath)
			if err != nil {
				return err
			}
			data, err := csvoptions.Read(csvArgs[0], m)
			if err != nil {
				return err
			}

			f := resolved()
			return efyj.Adjustment(modelPath, data, printResult, nil, !f.withoutReduce, f.limit, f.jobs, logger)
		},
	}
	return cmd
}

func newPredictionCommand(resolved func() searchFlags, logger *obslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prediction <model.dxi> <options.csv>",
		Short: "leave-related-rows-out cross-validation search over the options matrix",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			dxi, csvArgs := classifyArgs(args)
			modelPath, err := requireModelPath(dxi)
			if err != nil {
				return err
			}
			if len(csvArgs) == 0 {
				return fmt.Errorf("prediction requires an options .csv file")
			}

			m, err := xmlmodel.Read(modelPath)
			if err != nil {
				return err
			}
			data, err := csvoptions.Read(csvArgs[0], m)
			if err != nil {
				return err
			}

			f := resolved()
			return efyj.Prediction(modelPath, data, printResult, nil, !f.withoutReduce, f.limit, f.jobs, data.HasPlace, logger)
		},
	}
	return cmd
}

// printResult is the default on_result callback for the search subcommands:
// print one line per completed budget and never request cancellation.
func printResult(r efyj.Result) bool {
	fmt.Printf("budget=%d kappa=%.4f evaluations=%d loops=%d elapsed=%s\n",
		r.Budget, r.Kappa, r.EvaluatorInvocations, r.KappaEvaluations, r.Elapsed)
	return true
}
