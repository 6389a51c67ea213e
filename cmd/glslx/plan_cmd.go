package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the order in which a pipeline runs its phases",
		Args:  cobra.NoArgs,
		RunE:  planHandler,
	}
	addPipelineFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Output format (json or text)")
	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// planLevel is one level of a plan in JSON output.
type planLevel struct {
	Level  int      `json:"level"`
	Phases []string `json:"phases"`
}

func planHandler(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}
	m := newManager(p.Filename)
	if err := p.Apply(m); err != nil {
		return err
	}
	plan, err := m.Plan(m.JobParameters())
	if err != nil {
		return err
	}
	if format != "json" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), plan.String())
		return err
	}
	levels := make([]planLevel, 0, len(plan.Levels()))
	for i, level := range plan.Levels() {
		names := make([]string, len(level))
		for j, phase := range level {
			names[j] = phase.Name()
		}
		levels = append(levels, planLevel{Level: i, Phases: names})
	}
	data, err := getOutputJSON(levels)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
