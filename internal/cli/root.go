// Package cli implements the msid command line.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gourl/msid/internal/services"
	"github.com/gourl/msid/pkg/msid"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	Profiles   string // path to a YAML profile file
	Profile    string
	Epoch      string
	Alphabet   string
	Resolution string

	codec *msid.Codec
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the msid CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(msid.New())
}

// newRootCommand builds the command tree around codec. Commands share the
// codec, so identifiers minted within one process keep increasing.
func newRootCommand(codec *msid.Codec) *cobra.Command {
	opts := &RootOptions{codec: codec}

	cmd := &cobra.Command{
		Use:   "msid",
		Short: "msid - compact sortable timestamp identifiers",
		Long: `Encode instants as short, lexicographically sortable identifiers and
decode them back.

Identifiers count milliseconds, seconds or days since an epoch and are
written in a base-N alphabet (62 symbols by default). Profiles name a
combination of epoch, alphabet and resolution.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	flags.StringVar(&opts.Profiles, "profiles", "", "YAML file of named profiles")
	flags.StringVarP(&opts.Profile, "profile", "p", "", "profile to encode or decode with")
	flags.StringVar(&opts.Epoch, "epoch", "", "epoch as RFC 3339 or unix milliseconds (default 1970-01-01T00:00:00Z)")
	flags.StringVar(&opts.Alphabet, "alphabet", "", "symbol alphabet, 2-256 distinct bytes (default 0-9A-Za-z)")
	flags.StringVar(&opts.Resolution, "resolution", "", "ms, second or day (default ms; inferred on decode)")

	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// idService assembles an IDService over the profile file and the codec
// flags.
func (o *RootOptions) idService(ctx context.Context) (services.IDService, error) {
	profiles, err := newMemoryProfiles(ctx, o.Profiles)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid profile file", err)
	}
	return services.NewIDService(o.codec, services.WithProfiles(profiles)), nil
}

// overrides parses the --epoch, --alphabet and --resolution flags.
func (o *RootOptions) overrides() (msid.Config, error) {
	cfg, err := services.ParseConfig(o.Epoch, o.Alphabet, o.Resolution)
	if err != nil {
		return msid.Config{}, WrapExitError(ExitCommandError, "invalid codec flags", err)
	}
	return cfg, nil
}

// fail reports err through f and returns an ExitError carrying code.
func fail(f *OutputFormatter, code int, err error) error {
	_ = f.Error(services.ErrorCode(err), err.Error(), nil)
	return &ExitError{Code: code, Message: "command failed", Err: err, reported: true}
}
