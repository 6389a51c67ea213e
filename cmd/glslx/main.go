package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "glslx",
		Short:         "Transform GLSL shader source code",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			processGlobalFlags()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.glslx.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log the transformation steps")
	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("no-color", flags.Lookup("no-color"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindEnv("no-color", "NO_COLOR")

	cmd.AddCommand(
		newTransformCmd(),
		newPrintCmd(),
		newAstCmd(),
		newPlanCmd(),
	)
	return cmd
}

// initConfig reads the config file named by --config, or ~/.glslx.yaml if
// it exists.
func initConfig() error {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}
	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".glslx.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	viper.SetConfigFile(path)
	return viper.ReadInConfig()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}
