package cmd

import (
	"fmt"

	"smriti/db"
	"smriti/ui"

	"github.com/spf13/cobra"
)

var (
	viewAll     bool
	viewAliases bool
	viewService bool

	searchAlias   string
	searchService string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display saved commands, aliases or services",
	Long: `Displays all saved commands (the default), only their aliases, or the
services in use.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Show the command behind an alias or all commands of a service",
	Long: `Shows the command saved under an alias, including its {placeholders},
or every command of a service.

Examples:
  smriti search -a glog
  smriti search -s docker`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(searchCmd)

	viewCmd.Flags().BoolVar(&viewAll, "all", false, "display all saved commands")
	viewCmd.Flags().BoolVarP(&viewAliases, "alias", "a", false, "display all aliases")
	viewCmd.Flags().BoolVarP(&viewService, "service", "s", false, "display all services")
	viewCmd.MarkFlagsMutuallyExclusive("all", "alias", "service")

	searchCmd.Flags().StringVarP(&searchAlias, "alias", "a", "", "alias to look up")
	searchCmd.Flags().StringVarP(&searchService, "service", "s", "", "service to list")
	searchCmd.MarkFlagsOneRequired("alias", "service")
}

func runView(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	all := viewAll || !(viewAliases || viewService)

	return withStore(func(store *db.DB) error {
		switch {
		case all:
			n, err := store.Count()
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(out, "No commands saved yet. Add one with `smriti add`.")
				return nil
			}
			commands, err := store.List()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.RecordTable(commands))
			fmt.Fprintf(out, "%d command(s)\n", n)

		case viewAliases:
			aliases, err := store.ListField(db.FieldAlias)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.ValueTable("Aliases", aliases))

		case viewService:
			services, err := store.ListField(db.FieldService)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.ValueTable("Services", distinct(services)))
		}
		return nil
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return withStore(func(store *db.DB) error {
		if cmd.Flags().Changed("alias") {
			if err := showRecord(cmd, store, searchAlias); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("service") {
			commands, err := store.FindByService(searchService)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				fmt.Fprintf(out, "No commands found for the provided '%s' service.\n", searchService)
				return nil
			}
			fmt.Fprintln(out, ui.RecordTable(commands))
		}
		return nil
	})
}

// distinct drops repeated values, keeping first occurrences in order.
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
