package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/fingerprint-attendance/internal/station"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run the interactive station menu",
	Long: `Run the interactive numbered menu of the station.

A failed operation is reported and the menu is shown again. The menu ends
with choice 6, at the end of input or on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runMenuCmd,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenuCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	err = runMenu(ctx, a.station, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

const menuText = `
1. Enroll Fingerprint
2. Verify Fingerprint for Attendance
3. Update Fingerprint
4. Delete Fingerprint
5. View Enrolled Fingerprints
6. Exit
`

// runMenu serves menu choices read from in until the operator exits.
// Operation failures are printed and never end the loop.
func runMenu(ctx context.Context, st *station.Station, in io.Reader, out io.Writer) error {
	input := newLineReader(in)
	defer input.Close()

	for {
		fmt.Fprint(out, menuText)
		choice, err := input.ReadLine(ctx, out, "Enter your choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			res, err := st.Enroll(ctx, promptedName(input, out))
			if err != nil {
				fmt.Fprintf(out, "Failed to enroll fingerprint: %v\n", err)
				break
			}
			printEnrollResult(out, res)
		case "2":
			res, err := st.Verify(ctx)
			if err != nil {
				fmt.Fprintf(out, "Failed to verify fingerprint: %v\n", err)
				break
			}
			printVerifyResult(out, res)
		case "3":
			name, err := input.ReadLine(ctx, out, "Enter name to update fingerprint: ")
			if err != nil {
				return menuInputError(out, err)
			}
			res, err := st.Update(ctx, name)
			if err != nil {
				fmt.Fprintf(out, "Failed to update fingerprint: %v\n", err)
				break
			}
			printUpdateResult(out, res)
		case "4":
			name, err := input.ReadLine(ctx, out, "Enter name to delete fingerprint: ")
			if err != nil {
				return menuInputError(out, err)
			}
			deleted, err := st.Delete(ctx, name)
			if err != nil {
				fmt.Fprintf(out, "Failed to delete fingerprint: %v\n", err)
				break
			}
			printDeleteResult(out, name, deleted)
		case "5":
			identities, err := st.ListEnrolled(ctx)
			if err != nil {
				fmt.Fprintf(out, "Failed to fetch fingerprints: %v\n", err)
				break
			}
			printIdentities(out, identities)
		case "6":
			return nil
		default:
			fmt.Fprintln(out, "Invalid choice. Please try again.")
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func menuInputError(out io.Writer, err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(out)
		return nil
	}
	return err
}
