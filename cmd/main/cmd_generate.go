package main

import (
	"errors"
	"fmt"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		weightsFile string
		model       string
		count       int
		maxLength   int
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate words from a tuned Markov chain",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("weights-file") {
				weightsFile = a.config.WeightsFile
			}
			if !cmd.Flags().Changed("n-words") {
				count = a.config.Words
			}
			if count < 0 {
				return errors.New("number of words must not be negative")
			}
			var seedPtr *uint64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}

			chain, err := a.loadChain(cmd.Context(), model, weightsFile, seedPtr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for range count {
				fmt.Fprintln(out, titleCase(chain.Generate(markov.WithMaxLength(maxLength))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&weightsFile, "weights-file", "w", "", "path to the learned weights (default from config)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "load the chain from the registry instead of the weights file")
	cmd.Flags().IntVarP(&count, "n-words", "n", 0, "number of words to generate (default from config)")
	cmd.Flags().IntVar(&maxLength, "max-len", 0, "maximum length of a generated word, 0 for no limit")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible output")
	cmd.MarkFlagsMutuallyExclusive("weights-file", "model")
	return cmd
}
