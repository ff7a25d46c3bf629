package cmd

import (
	"fmt"

	"smriti/db"

	"github.com/spf13/cobra"
)

var (
	deleteAlias   string
	deleteService string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a command by alias, or every command of a service",
	Long: `Deletes the command saved under an alias, or all commands of a service.

Examples:
  smriti delete -a glog
  smriti delete -s docker`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVarP(&deleteAlias, "alias", "a", "", "alias of the command to delete")
	deleteCmd.Flags().StringVarP(&deleteService, "service", "s", "", "service whose commands are deleted")
	deleteCmd.MarkFlagsOneRequired("alias", "service")
}

func runDelete(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return withStore(func(store *db.DB) error {
		if cmd.Flags().Changed("alias") {
			if err := store.DeleteByAlias(deleteAlias); err != nil {
				return fmt.Errorf("couldn't delete alias %q: %w", deleteAlias, err)
			}
			fmt.Fprintf(out, "Command with alias %s deleted\n", deleteAlias)
		}

		if cmd.Flags().Changed("service") {
			n, err := store.DeleteByService(deleteService)
			if err != nil {
				return fmt.Errorf("couldn't delete service %q: %w", deleteService, err)
			}
			fmt.Fprintf(out, "%d command(s) of service %s deleted\n", n, deleteService)
		}
		return nil
	})
}
