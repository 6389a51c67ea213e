package main

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"os"

	"github.com/cloudcmds/glslx/errors"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// errMismatch is returned by the print command when the printed source
// differs from its input.
var errMismatch = goerrors.New("printed source differs from input")

func fatal(err error) {
	if goerrors.Is(err, errMismatch) {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
	fmt.Fprint(os.Stderr, errors.NewFormatter(useColor(os.Stderr)).FormatError(err))
	os.Exit(1)
}

func red(s string) string {
	return color.New(color.FgRed).Sprint(s)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func useColor(f *os.File) bool {
	return !viper.GetBool("no-color") && isTerminal(f)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !useColor(os.Stderr),
	}).Level(level).With().Timestamp().Logger()
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutputJSON(v any) ([]byte, error) {
	if viper.GetBool("no-color") || color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

func checkOutputFormat(format string) error {
	switch format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
