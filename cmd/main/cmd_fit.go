package main

import (
	"fmt"
	"log/slog"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/spf13/cobra"
)

func newFitCmd(a *app) *cobra.Command {
	var trainingList, weightsFile, model string

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Tune the Markov chain",
		Long: `Tune the Markov chain on a list of words separated by whitespace.

The learned weights are written to the weights file, or stored in the model
registry when --model is given. Passing both stores both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("weights-file") {
				weightsFile = a.config.WeightsFile
			}

			words, err := readTrainingList(trainingList)
			if err != nil {
				return err
			}
			chain, err := markov.Fit(words, a.chainOptions(nil)...)
			if err != nil {
				return fmt.Errorf("failed to fit chain on %s: %w", trainingList, err)
			}
			stats := chain.Stats()
			a.logger.Info("Training completed",
				slog.String("training_list", trainingList),
				slog.Int("words", len(words)),
				slog.Int("vertices", stats.Vertices),
				slog.Int("transitions", stats.Transitions),
			)

			out := cmd.OutOrStdout()
			if model == "" || cmd.Flags().Changed("weights-file") {
				if err = chain.Save(weightsFile); err != nil {
					return err
				}
				fmt.Fprintf(out, "The chain is saved to %s\n", weightsFile)
			}
			if model != "" {
				reg, closeReg, err := a.openRegistry()
				if err != nil {
					return err
				}
				defer closeReg()
				if err = reg.SaveModel(cmd.Context(), model, chain); err != nil {
					return fmt.Errorf("failed to store model %q: %w", model, err)
				}
				fmt.Fprintf(out, "The chain is stored as model %q\n", model)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&trainingList, "training-list", "t", "", "path to the list of the words to learn")
	cmd.Flags().StringVarP(&weightsFile, "weights-file", "w", "", "path to the learned weights (default from config)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "store the chain in the registry under this name")
	_ = cmd.MarkFlagRequired("training-list")
	return cmd
}
