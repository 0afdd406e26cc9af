package cmd

import (
	"os"

	"github.com/kozaktomas/fingerprint-attendance/internal/enrollment"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [name]",
	Short: "Enroll a new fingerprint",
	Long: `Enroll a new fingerprint.

The finger is read twice and both reads must match. A finger that is
already enrolled is reported and not stored again. When the name is
omitted it is asked for once the finger is known to be new.

Examples:
  attendance enroll "Jana Nováková"
  attendance enroll`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Bool("json", false, "Output as JSON")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	input := newLineReader(os.Stdin)
	defer input.Close()

	name := promptedName(input, os.Stdout)
	if len(args) == 1 {
		name = enrollment.StaticName(args[0])
	}

	res, err := a.station.Enroll(ctx, name)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, res)
	}
	printEnrollResult(os.Stdout, res)
	return nil
}
