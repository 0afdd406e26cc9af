package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an enrolled fingerprint",
	Long: `Delete the first person enrolled under the given name.

Attendance sessions already recorded for the person are kept.

Example:
  attendance delete "Jana Nováková" --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	skipConfirm := mustGetBool(cmd, "yes")
	name := args[0]

	if !skipConfirm && !confirmAction(ctx, fmt.Sprintf("Delete fingerprint for %s? [y/N]: ", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.station.Delete(ctx, name)
	if err != nil {
		return err
	}
	printDeleteResult(os.Stdout, name, deleted)
	return nil
}
