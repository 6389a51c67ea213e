package main

import (
	"fmt"

	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/printer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print [file]",
		Short: "Parse and print a shader, checking that the source round trips",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printHandler,
	}
	addSourceFlags(cmd)
	return cmd
}

func printHandler(cmd *cobra.Command, args []string) error {
	src, filename, err := getSource(cmd, args)
	if err != nil {
		return err
	}
	tree, err := parser.Parse(cmd.Context(), src, parser.WithFilename(filename))
	if err != nil {
		return err
	}
	out := printer.Print(tree)
	if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if out != src {
		log.Debug().Int("input", len(src)).Int("output", len(out)).Msg("round trip mismatch")
		return errMismatch
	}
	return nil
}
