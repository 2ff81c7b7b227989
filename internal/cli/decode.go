package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gourl/msid/internal/services"
)

// DecodedID describes one decoded identifier.
type DecodedID struct {
	ID         string `json:"id" yaml:"id"`
	Time       string `json:"time" yaml:"time"`
	UnixMilli  int64  `json:"unix_ms" yaml:"unix_ms"`
	Resolution string `json:"resolution" yaml:"resolution"`
	Inferred   bool   `json:"inferred" yaml:"inferred"`
}

// DecodeResult is the output of the decode command.
type DecodeResult struct {
	Results []DecodedID `json:"results" yaml:"results"`
}

// String prints one tab-separated line per identifier: id, time and
// resolution.
func (r DecodeResult) String() string {
	lines := make([]string, 0, len(r.Results))
	for _, d := range r.Results {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", d.ID, d.Time, d.Resolution))
	}
	return strings.Join(lines, "\n")
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <id>...",
		Short: "Decode identifiers back to timestamps",
		Long: `Decode identifiers to RFC 3339 timestamps at millisecond precision.

Without --resolution the resolution is inferred from the identifier length:
7 symbols is milliseconds, 6 is seconds, 3 or 4 is days. Identifiers made
with another epoch or alphabet need the matching flags or --profile.`,
		Example: `  msid decode UqofYU9
  msid decode --resolution second 1uaruZ
  msid decode --epoch 2000-01-01T00:00:00Z EBT2bwj`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runDecode(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.overrides()
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	svc, err := opts.idService(cmd.Context())
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	result := DecodeResult{Results: make([]DecodedID, 0, len(ids))}
	for _, id := range ids {
		resp, err := svc.Inspect(cmd.Context(), services.InspectRequest{
			ID:      id,
			Profile: opts.Profile,
			Config:  cfg,
		})
		if err != nil {
			return fail(formatter, ExitFailure, fmt.Errorf("%s: %w", id, err))
		}
		formatter.VerboseLog("%s: offset resolution %s (inferred=%t)", id, resp.Resolution, resp.Inferred)

		result.Results = append(result.Results, DecodedID{
			ID:         resp.ID,
			Time:       resp.Time.UTC().Format(services.TimeLayout),
			UnixMilli:  resp.UnixMilli,
			Resolution: resp.Resolution.String(),
			Inferred:   resp.Inferred,
		})
	}

	return formatter.Success(result)
}
