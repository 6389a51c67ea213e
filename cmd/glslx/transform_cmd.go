package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Run a pipeline of transformations over a shader",
		Args:  cobra.MaximumNArgs(1),
		RunE:  transformHandler,
	}
	addSourceFlags(cmd)
	addPipelineFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func transformHandler(cmd *cobra.Command, args []string) error {
	src, filename, err := getSource(cmd, args)
	if err != nil {
		return err
	}
	p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}
	m := newManager(filename)
	if err := p.Apply(m); err != nil {
		return err
	}
	out, err := m.Transform(cmd.Context(), src)
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, []byte(out), 0o644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
