package cmd

import (
	"errors"
	"fmt"

	"smriti/db"
	"smriti/runner"
	"smriti/ui"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <alias> [args...]",
	Short: "Run a saved command by alias",
	Long: `Runs the command saved under alias through the shell. Arguments fill the
command's {placeholders} in order of first appearance; a placeholder used
twice takes one argument. Extra arguments are ignored. Arguments are
inserted as-is, without quoting.

Examples:
  smriti run greet world
  smriti run glog 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse, search and run saved commands interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.DB) error {
			return ui.Browse(store, cfg.Shell)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(browseCmd)

	// Everything after the alias belongs to the saved command.
	runCmd.Flags().SetInterspersed(false)
}

func runRun(cmd *cobra.Command, args []string) error {
	opts := []runner.Option{
		runner.WithShell(cfg.Shell),
		runner.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		runner.WithStdin(cmd.InOrStdin()),
	}
	if cfg.Echo {
		opts = append(opts, runner.WithEcho(cmd.ErrOrStderr()))
	}

	return withStore(func(store *db.DB) error {
		_, err := runner.NewEngine(storeSource{store}, opts...).Run(cmd.Context(), args[0], args[1:])
		return err
	})
}

// storeSource resolves aliases against the store for the engine.
type storeSource struct{ store *db.DB }

func (s storeSource) CommandText(alias string) (string, error) {
	c, err := s.store.CommandText(alias)
	if errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("%w: %q", runner.ErrAliasNotFound, alias)
	}
	return c, err
}
