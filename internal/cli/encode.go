package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gourl/msid/internal/services"
)

// EncodeResult is the output of the encode command.
type EncodeResult struct {
	IDs        []string `json:"ids" yaml:"ids"`
	Resolution string   `json:"resolution" yaml:"resolution"`
	Profile    string   `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// String prints one identifier per line.
func (r EncodeResult) String() string {
	return strings.Join(r.IDs, "\n")
}

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	At    string
	Count int
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode the current time, or --at, as identifiers",
		Long: `Encode an instant as one or more identifiers.

Without --at the current time is used. Identifiers printed by one
invocation are strictly increasing, so -n mints a sortable batch.`,
		Example: `  msid encode
  msid encode -n 5 --resolution second
  msid encode --at 2025-07-13T08:18:15.597Z --epoch 2000-01-01T00:00:00Z
  msid --profiles profiles.yaml encode --profile daily`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "instant to encode, RFC 3339 or unix milliseconds")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of identifiers to mint")

	return cmd
}

func runEncode(opts *EncodeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.overrides()
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	req := services.MintRequest{
		Profile: opts.Profile,
		Config:  cfg,
		Count:   opts.Count,
	}
	if opts.At != "" {
		at, err := services.ParseInstant(opts.At)
		if err != nil {
			return fail(formatter, ExitCommandError, err)
		}
		req.At = &at
	}
	if opts.Count < 1 {
		return fail(formatter, ExitCommandError, services.ErrInvalidCount)
	}

	svc, err := opts.idService(cmd.Context())
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	resp, err := svc.Mint(cmd.Context(), req)
	if err != nil {
		return fail(formatter, ExitFailure, err)
	}
	formatter.VerboseLog("minted %d identifier(s) at %s resolution", len(resp.IDs), resp.Resolution)

	return formatter.Success(EncodeResult{
		IDs:        resp.IDs,
		Resolution: resp.Resolution.String(),
		Profile:    resp.Profile,
	})
}
