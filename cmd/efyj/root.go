package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quesnel/efyj-go/internal/obslog"
)

const version = "0.1.0"

// searchFlags holds the three knobs §6.3's Config enumerates, bound through
// viper so EFYJ_LIMIT / EFYJ_JOBS / EFYJ_WITHOUT_REDUCE env vars override
// unset flags (spec's AMBIENT STACK configuration layering).
type searchFlags struct {
	limit         int
	jobs          int
	withoutReduce bool
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("efyj")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := &searchFlags{}

	root := &cobra.Command{
		Use:           "efyj",
		Short:         "DEX hierarchical evaluation and inverse calibration",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&flags.limit, "limit", 0, "cap the search budget range (<=0 uses the full range)")
	root.PersistentFlags().IntVar(&flags.jobs, "jobs", 1, "parallel worker count")
	root.PersistentFlags().BoolVar(&flags.withoutReduce, "without-reduce", false, "search the full row range instead of the whitelist reduction")
	_ = v.BindPFlag("limit", root.PersistentFlags().Lookup("limit"))
	_ = v.BindPFlag("jobs", root.PersistentFlags().Lookup("jobs"))
	_ = v.BindPFlag("without-reduce", root.PersistentFlags().Lookup("without-reduce"))

	resolved := func() searchFlags {
		return searchFlags{
			limit:         v.GetInt("limit"),
			jobs:          v.GetInt("jobs"),
			withoutReduce: v.GetBool("without-reduce"),
		}
	}

	logger, _ := obslog.NewDevelopment()

	root.AddCommand(
		newExtractCommand(),
		newMergeCommand(),
		newEvaluateCommand(),
		newAdjustmentCommand(resolved, logger),
		newPredictionCommand(resolved, logger),
	)
	return root
}

// classifyArgs splits positional arguments by extension (spec §6.4): .dxi
// files are model inputs, in order (the second, when present, is the merge
// output); .csv files are options inputs.
func classifyArgs(args []string) (dxi []string, csv []string) {
	for _, a := range args {
		switch strings.ToLower(filepath.Ext(a)) {
		case ".dxi":
			dxi = append(dxi, a)
		case ".csv":
			csv = append(csv, a)
		}
	}
	return
}

func firstOf(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func requireModelPath(dxi []string) (string, error) {
	if len(dxi) == 0 {
		return "", fmt.Errorf("no .dxi model file given")
	}
	return dxi[0], nil
}
