package cmd

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zostay/emledit/internal/server"
)

func (a *app) extractCmd() *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "extract message",
		Short: "Print the editable parts of a message as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, _, err := a.readMessage(cmd, args[0])
			if err != nil {
				return err
			}

			report := server.NewReport(cmd.Context(), msg, filepath.Base(args[0]), server.ReportOptions{
				Inline: inline,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "include the HTML with cid: images inlined as data: URIs")

	return cmd
}
