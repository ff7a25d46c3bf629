package cmd

import (
	"errors"
	"fmt"

	"smriti/config"
	"smriti/db"
	"smriti/logging"
	"smriti/runner"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	cfg = config.Default()
	fs  = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "smriti",
	Short: "Keep track of the commands your memory missed.",
	Long: `smriti saves shell commands under short aliases, grouped by service,
and runs them again by alias. Placeholders such as {name} in a saved
command are filled from the arguments given to run, in order.

Examples:
  smriti add -a greet -c "echo hello {name}" -s demo -i "say hello"
  smriti run greet world
  smriti view --service
  smriti search -s demo`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/smriti/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code. A
// failed shell command passes its own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var shellErr *runner.ShellError
	if errors.As(err, &shellErr) && shellErr.ExitCode > 0 {
		return shellErr.ExitCode
	}
	return 1
}

func setup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}

	loaded, err := config.Load(fs, path)
	if err != nil {
		return err
	}
	cfg = loaded

	if cfg.NoColor {
		color.NoColor = true
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logging.DebugLevel
	}
	logging.Init(logging.Config{
		Level:  level,
		Output: cmd.ErrOrStderr(),
		Pretty: cfg.LogPretty,
	})
	logging.Debug().Str("config", path).Str("shell", cfg.Shell).Msg("configuration loaded")
	return nil
}

// withStore opens the command store for the duration of fn.
func withStore(fn func(store *db.DB) error) error {
	store, err := db.New()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printError(err error) {
	fmt.Fprintln(rootCmd.ErrOrStderr(), color.RedString("Error: %v", err))
}
