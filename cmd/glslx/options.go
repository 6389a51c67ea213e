package main

import (
	"errors"
	"io"
	"os"

	"github.com/cloudcmds/glslx/parser"
	"github.com/cloudcmds/glslx/pipeline"
	"github.com/cloudcmds/glslx/transform"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addSourceFlags adds the flags that select where the shader source is
// read from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Shader source to read")
	cmd.Flags().Bool("stdin", false, "Read the shader source from stdin")
}

// getSource returns the shader source and its file name. There are three
// possibilities:
//  1. --code <source>
//  2. --stdin (read the source from stdin)
//  3. path as args[0]
func getSource(cmd *cobra.Command, args []string) (src, filename string, err error) {
	codeFlagSet := cmd.Flags().Changed("code")
	stdinFlagSet := cmd.Flags().Changed("stdin")
	pathSupplied := len(args) > 0
	if pathSupplied && (codeFlagSet || stdinFlagSet) {
		return "", "", errors.New("multiple input sources specified")
	} else if codeFlagSet && stdinFlagSet {
		return "", "", errors.New("multiple input sources specified")
	}
	switch {
	case stdinFlagSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return code, "<code>", nil
	}
	return "", "", errors.New("no input provided")
}

// addPipelineFlags adds the flags that select the pipeline file.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("pipeline", "p", "", "Pipeline file of transformations")
	cmd.Flags().StringToString("var", nil, "Pipeline variable as name=value")
}

// loadPipeline loads the pipeline named by --pipeline or the config file,
// with the variables of both. Flag values win.
func loadPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	viper.BindPFlag("pipeline", cmd.Flags().Lookup("pipeline"))
	viper.BindPFlag("var", cmd.Flags().Lookup("var"))
	path := viper.GetString("pipeline")
	if path == "" {
		return nil, errors.New("no pipeline file given; use --pipeline")
	}
	return pipeline.Load(path,
		pipeline.WithVariables(viper.GetStringMapString("var")),
		pipeline.WithLogger(log.Logger))
}

func newManager(filename string) *transform.Manager {
	return transform.New(
		transform.WithLogger(log.Logger),
		transform.WithParserOptions(parser.WithFilename(filename)),
	)
}
