// Command cravecheck exercises the text-generation provider and TheMealDB
// directly, without starting the web server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/crave-decoder/config"
	"github.com/pageza/crave-decoder/generation"
	"github.com/pageza/crave-decoder/logging"
	"github.com/pageza/crave-decoder/mealdb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// insightReport is what the insight command writes out.
type insightReport struct {
	Query   string             `json:"query"`
	Insight generation.Insight `json:"insight"`
	Failure string             `json:"failure,omitempty"`
	Error   string             `json:"error,omitempty"`
	Recipe  *mealdb.MealRecord `json:"recipe,omitempty"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "cravecheck",
		Short:        "Check the insight and recipe upstreams",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream calls to stderr")

	loadConfig := func() (config.Config, *logrus.Logger, error) {
		cfg, _, err := config.Load()
		if err != nil {
			return config.Config{}, nil, err
		}
		log := logging.Discard()
		if verbose {
			log = logging.NewWithOutput(os.Stderr, "debug", cfg.LogFormat)
		}
		return cfg, log, nil
	}

	root.AddCommand(newInsightCmd(loadConfig), newMealCmd(loadConfig))
	return root
}

type configLoader func() (config.Config, *logrus.Logger, error)

func newInsightCmd(load configLoader) *cobra.Command {
	var out string
	var withRecipe bool
	cmd := &cobra.Command{
		Use:   "insight <text>",
		Short: "Interpret a craving and write the outcome as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), log)
			result := runInsight(ctx, generation.New(cfg, nil), strings.Join(args, " "))
			if withRecipe && result.Insight.RecipeSuggestion != "" {
				rec, err := mealdb.New(cfg, nil).Lookup(ctx, result.Insight.RecipeSuggestion)
				if err != nil {
					result.Error = err.Error()
				} else {
					result.Recipe = &rec
				}
			}
			return writeResult(cmd.OutOrStdout(), out, result)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "output.json", `output file ("-" for stdout)`)
	cmd.Flags().BoolVar(&withRecipe, "recipe", false, "also look up the suggested recipe")
	return cmd
}

func newMealCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "meal <name>",
		Short: "Look up a recipe the way /get_meal_details does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), log)
			rec, err := mealdb.New(cfg, nil).Lookup(ctx, strings.Join(args, " "))
			if err != nil {
				return errors.Wrap(err, "lookup")
			}
			return writeResult(cmd.OutOrStdout(), "-", rec)
		},
	}
}

func runInsight(ctx context.Context, g *generation.Generator, query string) insightReport {
	outcome := g.Interpret(ctx, query)
	result := insightReport{Query: query, Insight: outcome.Insight}
	if !outcome.OK() {
		result.Failure = string(outcome.Failure.Kind)
		result.Error = outcome.Failure.Error()
	}
	return result
}

func writeResult(stdout io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal output")
	}
	if path == "-" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	fmt.Fprintf(stdout, "Output JSON written to %s\n", path)
	return nil
}
