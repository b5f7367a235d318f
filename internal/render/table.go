package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"pixlink/internal/intent"
	"pixlink/internal/pixgo"
	"pixlink/internal/utils"
)

const timeLayout = "02/01/2006 15:04"

// Intents prints the admin listing, newest first as given.
func Intents(w io.Writer, intents []*intent.PaymentIntent, linkFor func(id string) string) error {
	if len(intents) == 0 {
		_, err := fmt.Fprintln(w, "Nenhum link de pagamento criado.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVALOR\tDESCRIÇÃO\tCRIADO EM\tSTATUS\tLINK")
	for _, pi := range intents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			pi.ID,
			utils.FormatBRL(pi.Amount),
			pi.Description,
			pi.CreatedAt.Local().Format(timeLayout),
			pi.Status,
			linkFor(pi.ID),
		)
	}
	return tw.Flush()
}

// Details prints a gateway payment record.
func Details(w io.Writer, d pixgo.StatusData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "payment_id\t%s\n", d.PaymentID)
	fmt.Fprintf(tw, "external_id\t%s\n", d.ExternalID)
	fmt.Fprintf(tw, "amount\t%.2f\n", d.Amount)
	fmt.Fprintf(tw, "status\t%s\n", d.Status)
	if d.CustomerName != "" {
		fmt.Fprintf(tw, "customer\t%s\n", d.CustomerName)
	}
	fmt.Fprintf(tw, "created_at\t%s\n", d.CreatedAt)
	if d.UpdatedAt != "" {
		fmt.Fprintf(tw, "updated_at\t%s\n", d.UpdatedAt)
	}
	return tw.Flush()
}
