package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Replace the fingerprint of an enrolled person",
	Long: `Read a finger twice and replace the stored template of the first
person enrolled under the given name.

Example:
  attendance update "Jana Nováková"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Bool("json", false, "Output as JSON")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.station.Update(ctx, args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, res)
	}
	printUpdateResult(os.Stdout, res)
	return nil
}
