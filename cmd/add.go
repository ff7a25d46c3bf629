package cmd

import (
	"errors"
	"fmt"
	"strings"

	"smriti/db"
	"smriti/model"
	"smriti/ui"

	"github.com/spf13/cobra"
)

var (
	addCommand string
	addAlias   string
	addInfo    string
	addService string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a command to save",
	Long: `Saves a command under a unique alias. Use {name} placeholders for values
supplied when the command is run.

Examples:
  smriti add -c "docker logs -f {container}" -a dlogs -s docker
  smriti add -c "git log --oneline -n {count}" -a glog -s git -i "short history"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addCommand, "command", "c", "", "command to save")
	addCmd.Flags().StringVarP(&addAlias, "alias", "a", "", "command alias")
	addCmd.Flags().StringVarP(&addInfo, "info", "i", "", "command description")
	addCmd.Flags().StringVarP(&addService, "service", "s", "", "service the command belongs to")
	addCmd.MarkFlagRequired("command")
	addCmd.MarkFlagRequired("alias")
	addCmd.MarkFlagRequired("service")
}

func runAdd(cmd *cobra.Command, args []string) error {
	command := strings.TrimSpace(addCommand)
	alias := strings.TrimSpace(addAlias)
	service := strings.TrimSpace(addService)
	if command == "" || alias == "" || service == "" {
		return errors.New("command, alias and service must not be empty")
	}

	return withStore(func(store *db.DB) error {
		if _, err := store.Insert(command, alias, strings.TrimSpace(addInfo), service); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return fmt.Errorf("%w\nnote: command and alias must be unique", err)
			}
			return err
		}
		if err := showRecord(cmd, store, alias); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved successfully!")
		return nil
	})
}

// showRecord prints the stored command for alias as a one-row table.
func showRecord(cmd *cobra.Command, store *db.DB, alias string) error {
	rec, err := store.Get(alias)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.RecordTable([]model.Command{*rec}))
	return nil
}
