package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/wordweaver/pkg/registry"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the chains stored in the model registry",
	}
	cmd.AddCommand(
		newModelsListCmd(a),
		newModelsStatsCmd(a),
		newModelsRemoveCmd(a),
		newModelsExportCmd(a),
		newModelsImportCmd(a),
	)
	return cmd
}

// withRegistry runs fn against an open registry and closes it afterwards.
func (a *app) withRegistry(fn func(reg *registry.Registry) error) error {
	reg, closeReg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer closeReg()
	return fn(reg)
}

func newModelsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRegistry(func(reg *registry.Registry) error {
				models, err := reg.GetModelInfos(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to retrieve models: %w", err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSYMBOLS\tCREATED")
				for _, m := range models {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", m.Name, utf8.RuneCountInString(m.Vertices), m.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newModelsStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for every stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRegistry(func(reg *registry.Registry) error {
				stats, err := reg.GetStats(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to retrieve stats: %w", err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSYMBOLS\tTRANSITIONS\tFREQUENCY")
				for _, m := range stats.Models {
					s := stats.Stats[m.Id]
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", m.Name, s.Vertices, s.Transitions, s.TotalFrequency)
				}
				fmt.Fprintf(tw, "TOTAL\t\t\t%d\n", stats.TotalFrequency)
				return tw.Flush()
			})
		},
	}
}

func newModelsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(func(reg *registry.Registry) error {
				if err := reg.RemoveModel(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model %q removed\n", args[0])
				return nil
			})
		},
	}
}

func newModelsExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a stored model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(func(reg *registry.Registry) error {
				if output == "" {
					return reg.ExportModel(cmd.Context(), args[0], cmd.OutOrStdout())
				}
				var buf bytes.Buffer
				if err := reg.ExportModel(cmd.Context(), args[0], &buf); err != nil {
					return err
				}
				if err := atomic.WriteFile(output, &buf); err != nil {
					return fmt.Errorf("failed to write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model %q exported to %s\n", args[0], output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newModelsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a model exported as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer func(f *os.File) {
				_ = f.Close()
			}(f)

			return a.withRegistry(func(reg *registry.Registry) error {
				info, err := reg.ImportModel(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model %q imported\n", info.Name)
				return nil
			})
		},
	}
}
