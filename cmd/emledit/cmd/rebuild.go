package cmd

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/emledit/edit"
)

// ErrNoBody is returned by rebuild when neither --html nor --plain is given.
var ErrNoBody = errors.New("one of --html or --plain is required")

func (a *app) rebuildCmd() *cobra.Command {
	var (
		htmlPath  string
		plainPath string
		headers   []string
		keep      []int
		keepAll   bool
		attach    []string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "rebuild message",
		Short: "Write a copy of a message with a new body, headers, and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := &edit.Edit{
				Keep:    keep,
				KeepAll: keepAll,
			}

			switch {
			case htmlPath != "":
				e.Subtype = edit.HTML
				body, err := os.ReadFile(htmlPath)
				if err != nil {
					return fmt.Errorf("unable to read body: %w", err)
				}
				e.Body = string(body)
			case plainPath != "":
				e.Subtype = edit.Plain
				body, err := os.ReadFile(plainPath)
				if err != nil {
					return fmt.Errorf("unable to read body: %w", err)
				}
				e.Body = string(body)
			default:
				return ErrNoBody
			}

			var err error
			e.Headers, err = parseHeaderFlags(headers)
			if err != nil {
				return err
			}

			for _, path := range attach {
				na, err := readAttachment(path)
				if err != nil {
					return err
				}
				e.Add = append(e.Add, na)
			}

			msg, _, err := a.readMessage(cmd, args[0])
			if err != nil {
				return err
			}

			rebuilt, err := edit.Rebuild(msg, e)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("unable to create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			n, err := rebuilt.WriteTo(w)
			if err != nil {
				return fmt.Errorf("unable to write message: %w", err)
			}

			a.logger.Info("rebuilt message",
				"path", args[0],
				"output", output,
				"size", n,
				"attachments_added", len(e.Add),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&htmlPath, "html", "", "file holding the new HTML body")
	flags.StringVar(&plainPath, "plain", "", "file holding the new plain text body")
	flags.StringArrayVar(&headers, "header", nil, "set an editable header, as Name=Value (repeatable)")
	flags.IntSliceVar(&keep, "keep", nil, "index of an attachment to keep (repeatable)")
	flags.BoolVar(&keepAll, "keep-all", false, "keep every attachment")
	flags.StringArrayVar(&attach, "attach", nil, "file to attach (repeatable)")
	flags.StringVarP(&output, "output", "o", "", "write the message here instead of standard output")
	cmd.MarkFlagsMutuallyExclusive("html", "plain")

	return cmd
}

// parseHeaderFlags turns Name=Value pairs into a map.
func parseHeaderFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("header %q is not in Name=Value form", pair)
		}
		headers[name] = value
	}
	return headers, nil
}

// readAttachment loads a file to attach. The content type is guessed from the
// file extension.
func readAttachment(path string) (edit.NewAttachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return edit.NewAttachment{}, fmt.Errorf("unable to read attachment: %w", err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return edit.NewAttachment{}, fmt.Errorf("unable to read attachment: %w", err)
	}

	return edit.NewAttachment{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     content,
	}, nil
}
