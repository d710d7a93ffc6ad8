package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type crsRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Dimensions int    `json:"dimensions"`
	URI        string `json:"uri"`
}

// NewCRSsCommand lists the supported CRSs.
func NewCRSsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "crss",
		Short:        "List the supported coordinate reference systems",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, _, _, err := rootOpts.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			var rows []crsRow
			for _, c := range e.Provider.List() {
				rows = append(rows, crsRow{
					ID:         c.AuthorityCode(),
					Name:       c.Name,
					Kind:       string(c.Kind),
					Dimensions: c.Dim(),
					URI:        c.URI(),
				})
			}

			if rootOpts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%dD\t%s\t%s\n", r.ID, r.Dimensions, r.Kind, r.Name)
			}
			return tw.Flush()
		},
	}
}
