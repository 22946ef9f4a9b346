package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zostay/emledit/edit"
)

func (a *app) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview message",
		Short: "Show the detected language of a message and a translated sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, _, err := a.readMessage(cmd, args[0])
			if err != nil {
				return err
			}

			svc, err := a.translateService(cmd.Context())
			if err != nil {
				return err
			}

			body, _ := edit.Extract(msg)
			p := svc.Session().Preview(cmd.Context(), body)
			if p.Warning != "" {
				a.logger.Warn("translation failed", "error", p.Warning)
			}

			lang := p.Language
			if lang == "" {
				lang = "unknown"
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "language:   %s\n", lang)
			fmt.Fprintf(w, "target:     %s\n", p.Target)
			fmt.Fprintf(w, "translated: %t\n", p.Translated)
			if p.Warning != "" {
				fmt.Fprintf(w, "warning:    %s\n", p.Warning)
			}
			fmt.Fprintf(w, "\n%s\n", p.Text)

			return nil
		},
	}
}
