package cmd

import (
	"errors"
	"fmt"
	"strings"

	"smriti/db"
	"smriti/logging"
	"smriti/model"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportFile is the YAML document written by export and read by import.
type exportFile struct {
	Commands []model.Command `yaml:"commands"`
}

var (
	exportOutput  string
	exportService string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved commands as YAML",
	Long: `Writes saved commands as a YAML document that import understands.

Examples:
  smriti export -o commands.yaml
  smriti export -s docker`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import commands from a YAML export",
	Long: `Adds every command of a YAML export. Commands whose alias or command text
already exists are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (default: stdout)")
	exportCmd.Flags().StringVarP(&exportService, "service", "s", "", "only export commands of this service")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withStore(func(store *db.DB) error {
		var (
			commands []model.Command
			err      error
		)
		if cmd.Flags().Changed("service") {
			commands, err = store.FindByService(exportService)
		} else {
			commands, err = store.List()
		}
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(exportFile{Commands: commands})
		if err != nil {
			return fmt.Errorf("failed to encode commands: %w", err)
		}

		if exportOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := afero.WriteFile(fs, exportOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d command(s) to %s\n", len(commands), exportOutput)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := afero.ReadFile(fs, args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var file exportFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	return withStore(func(store *db.DB) error {
		var imported, skipped int
		for i, c := range file.Commands {
			c.Command = strings.TrimSpace(c.Command)
			c.Alias = strings.TrimSpace(c.Alias)
			c.Service = strings.TrimSpace(c.Service)
			if c.Command == "" || c.Alias == "" || c.Service == "" {
				logging.Warn().Int("entry", i+1).Msgf("skipping entry %d: command, alias and service are required", i+1)
				skipped++
				continue
			}

			if _, err := store.Insert(c.Command, c.Alias, c.Info, c.Service); err != nil {
				if !errors.Is(err, db.ErrDuplicate) {
					return err
				}
				logging.Warn().Err(err).Msgf("skipping %s", c.Alias)
				skipped++
				continue
			}
			imported++
		}

		logging.Info().Str("file", args[0]).Int("imported", imported).Int("skipped", skipped).Msg("import finished")
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d command(s), skipped %d\n", imported, skipped)
		return nil
	})
}
