package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/emledit/message"
)

// ErrRoundTripDiffers is returned by roundtrip when the serialized message is
// not the same as the input.
var ErrRoundTripDiffers = errors.New("round-trip output differs from input")

func (a *app) roundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip message",
		Short: "Parse and serialize a message and show any difference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, orig, err := a.readMessage(cmd, args[0])
			if err != nil {
				return err
			}

			out, err := message.Bytes(msg)
			if err != nil {
				return fmt.Errorf("unable to write message: %w", err)
			}

			if string(orig) == string(out) {
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d bytes)\n", args[0], len(orig))
				return nil
			}

			writeDiff(cmd.OutOrStdout(), string(orig), string(out))

			a.logger.Warn("round-trip differs",
				"path", args[0],
				"size", len(orig),
				"output_size", len(out),
			)

			return ErrRoundTripDiffers
		},
	}
}

// writeDiff writes the lines removed from a and added in b. Lines are quoted,
// so differences in line breaks show.
func writeDiff(w io.Writer, a, b string) {
	dmp := diffmatchpatch.New()
	ac, bc, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ac, bc, false), lines)

	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				fmt.Fprintf(w, "%s%q\n", prefix, line)
			}
		}
	}
}
