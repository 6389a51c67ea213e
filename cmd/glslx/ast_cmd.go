package main

import (
	"fmt"

	"github.com/cloudcmds/glslx/parser"
	"github.com/spf13/cobra"
)

func newAstCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Display the syntax tree of a shader",
		Args:  cobra.MaximumNArgs(1),
		RunE:  astHandler,
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Output format (json or text)")
	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func astHandler(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	src, filename, err := getSource(cmd, args)
	if err != nil {
		return err
	}
	tree, err := parser.Parse(cmd.Context(), src, parser.WithFilename(filename))
	if err != nil {
		return err
	}
	if format == "json" {
		data, err := getOutputJSON(tree.Export(tree.Root()))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), tree.Dump(tree.Root()))
	return err
}
