package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rechnung/internal/logger"
	"rechnung/internal/reference"
)

var referenceCmd = &cobra.Command{
	Use:   "reference [invoice-number]",
	Short: "Generate the ISO 11649 structured reference for an invoice number",
	Long: `Compute the SCOR payment reference ("RF" + two check digits + payload)
for an invoice number, as used in Swiss QR-bills.

Everything except letters and digits is stripped from the number before the
mod-97 check digits are computed; the check digits always fall in 02-98.`,
	Example: `  rechnung reference 2503-042
  rechnung reference A1`,
	Args: cobra.ExactArgs(1),
	RunE: runReference,
}

func init() {
	rootCmd.AddCommand(referenceCmd)
}

func runReference(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reference")
	number := args[0]

	ref, err := reference.GenerateStructuredReference(number)
	if err != nil {
		if errors.Is(err, reference.ErrInvalidReferenceInput) {
			return fmt.Errorf("invoice number %q contains no letters or digits", number)
		}
		log.Error().Err(err).Str("number", number).Msg("Reference generation failed")
		return err
	}

	log.Debug().Str("number", number).Str("reference", ref).Msg("Reference generated")
	fmt.Println(ref)
	return nil
}
