package cmd

import (
	"fmt"

	"smriti/db"

	"github.com/spf13/cobra"
)

var (
	updateAlias   string
	updateCommand string
	updateInfo    string
	updateService string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the command, info or service of an alias",
	Long: `Updates one or more fields of the command saved under an alias. Fields
not given are left as they are. Use rename to change the alias itself.

Examples:
  smriti update -a glog -c "git log --oneline --graph -n {count}"
  smriti update -a glog -s vcs -i ""`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var renameCmd = &cobra.Command{
	Use:   "rename <alias> <new-alias>",
	Short: "Rename an alias",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(renameCmd)

	updateCmd.Flags().StringVarP(&updateAlias, "alias", "a", "", "alias of the command to update")
	updateCmd.Flags().StringVarP(&updateCommand, "command", "c", "", "new command")
	updateCmd.Flags().StringVarP(&updateInfo, "info", "i", "", "new description")
	updateCmd.Flags().StringVarP(&updateService, "service", "s", "", "new service")
	updateCmd.MarkFlagRequired("alias")
	updateCmd.MarkFlagsOneRequired("command", "info", "service")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	updates := []struct {
		flag  string
		field db.Mutable
		value string
	}{
		{"command", db.MutableCommand, updateCommand},
		{"service", db.MutableService, updateService},
		{"info", db.MutableInfo, updateInfo},
	}

	return withStore(func(store *db.DB) error {
		for _, u := range updates {
			if !cmd.Flags().Changed(u.flag) {
				continue
			}
			if err := store.UpdateField(updateAlias, u.field, u.value); err != nil {
				return fmt.Errorf("couldn't update %s: %w", u.field, err)
			}
		}
		return showRecord(cmd, store, updateAlias)
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	oldAlias, newAlias := args[0], args[1]

	return withStore(func(store *db.DB) error {
		if err := store.RenameAlias(oldAlias, newAlias); err != nil {
			return fmt.Errorf("unable to rename %q: %w", oldAlias, err)
		}
		return showRecord(cmd, store, newAlias)
	})
}
