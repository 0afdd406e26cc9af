package cmd

import (
	"fmt"
	"os"

	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/identity"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled fingerprints",
	Long: `List enrolled people in enrollment order.

--search filters by name, ignoring case and diacritics.

Examples:
  attendance list
  attendance list --search novak --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Output as JSON")
	listCmd.Flags().String("search", "", "Only show names containing this text")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")
	search := mustGetString(cmd, "search")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	identities, err := a.station.ListEnrolled(ctx)
	if err != nil {
		return err
	}
	identities = filterIdentities(identities, search)

	if jsonOutput {
		if identities == nil {
			identities = []database.IdentitySummary{}
		}
		return printJSON(os.Stdout, identities)
	}
	printIdentities(os.Stdout, identities)
	if search == "" && len(identities) > 0 {
		fmt.Printf("\nTotal: %d\n", len(identities))
	}
	return nil
}

func filterIdentities(identities []database.IdentitySummary, query string) []database.IdentitySummary {
	if query == "" {
		return identities
	}
	var out []database.IdentitySummary
	for _, id := range identities {
		if identity.Matches(id.Name, query) {
			out = append(out, id)
		}
	}
	return out
}
