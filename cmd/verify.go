package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Identify a finger and record attendance",
	Long: `Identify the finger on the sensor and record an attendance event.

The first event of a day checks the person in, the next one checks them
out. A later event opens a new session.

Examples:
  attendance verify
  attendance verify --json`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.station.Verify(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, res)
	}
	printVerifyResult(os.Stdout, res)
	return nil
}
