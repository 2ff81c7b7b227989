package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gourl/msid/internal/services"
	"github.com/gourl/msid/pkg/msid"
)

var instant = time.Date(2025, 7, 13, 8, 18, 15, 597_000_000, time.UTC)

const instantArg = "2025-07-13T08:18:15.597Z"

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI with a codec whose clock is fixed at instant.
func execute(codec *msid.Codec, args ...string) result {
	if codec == nil {
		codec = msid.New(msid.WithClock(func() time.Time { return instant }))
	}
	cmd := newRootCommand(codec)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGolden(t *testing.T) {
	tests := []struct {
		name string
		runs [][]string
	}{
		{
			name: "encode_batch",
			runs: [][]string{{"encode", "-n", "3"}},
		},
		{
			name: "encode_epoch_json",
			runs: [][]string{{"--format", "json", "encode", "--at", instantArg, "--epoch", "2000-01-01T00:00:00Z"}},
		},
		{
			name: "encode_profiles",
			runs: [][]string{
				{"--profiles", "testdata/profiles.yaml", "--profile", "hex", "encode", "--at", instantArg},
				{"--profiles", "testdata/profiles.yaml", "--profile", "daily", "encode", "--at", "1752394695597"},
			},
		},
		{
			name: "decode_inferred",
			runs: [][]string{{"decode", "UqofYU9", "1uaruZ", "05H8"}},
		},
		{
			name: "decode_json",
			runs: [][]string{{"--format", "json", "decode", "UqofYU9"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			for _, args := range tt.runs {
				res := execute(nil, args...)
				require.NoError(t, res.err, res.stderr)
				out.WriteString(res.stdout)
			}
			newGoldie(t).Assert(t, tt.name, out.Bytes())
		})
	}
}

func TestEncode_SharedCodecKeepsIncreasing(t *testing.T) {
	codec := msid.New(msid.WithClock(func() time.Time { return instant }))

	first := execute(codec, "encode")
	second := execute(codec, "encode")
	require.NoError(t, first.err)
	require.NoError(t, second.err)

	assert.Equal(t, "UqofYU9\n", first.stdout)
	assert.Equal(t, "UqofYUA\n", second.stdout)
}

func TestEncode_YAML(t *testing.T) {
	res := execute(nil, "--format", "yaml", "encode", "--resolution", "second", "--at", instantArg)
	require.NoError(t, res.err)

	var resp struct {
		Status string       `yaml:"status"`
		Data   EncodeResult `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"1uaruZ"}, resp.Data.IDs)
	assert.Equal(t, "second", resp.Data.Resolution)
}

func TestDecode_ExplicitConfig(t *testing.T) {
	res := execute(nil, "--format", "json", "--epoch", "2000-01-01T00:00:00Z", "--resolution", "ms", "decode", "EBT2bwj")
	require.NoError(t, res.err)

	var resp struct {
		Status string       `json:"status"`
		Data   DecodeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "2025-07-13T08:18:15.597Z", resp.Data.Results[0].Time)
	assert.False(t, resp.Data.Results[0].Inferred)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, res := range []string{"ms", "second", "day"} {
		t.Run(res, func(t *testing.T) {
			enc := execute(nil, "--resolution", res, "encode", "--at", instantArg)
			require.NoError(t, enc.err)
			id := enc.stdout[:len(enc.stdout)-1]

			dec := execute(nil, "--format", "json", "--resolution", res, "decode", id)
			require.NoError(t, dec.err)

			var resp struct {
				Data DecodeResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(dec.stdout), &resp))
			unit, err := msid.ParseResolution(res)
			require.NoError(t, err)
			expected := time.UnixMilli(instant.UnixMilli() / unit.Unit() * unit.Unit()).UTC()
			assert.Equal(t, expected.UnixMilli(), resp.Data.Results[0].UnixMilli)
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedExit int
		expectedCode string
	}{
		{"invalid character", []string{"decode", "abc!"}, ExitFailure, services.CodeInvalidCharacter},
		{"empty identifier", []string{"decode", ""}, ExitFailure, services.CodeEmptyID},
		{"overflow", []string{"decode", "LygHa16AHYG"}, ExitFailure, services.CodeOverflow},
		{"epoch violation", []string{"--epoch", "2030-01-01T00:00:00Z", "encode"}, ExitFailure, services.CodeEpochViolation},
		{"unknown profile", []string{"--profile", "nope", "encode"}, ExitFailure, services.CodeProfileNotFound},
		{"invalid resolution", []string{"--resolution", "week", "encode"}, ExitCommandError, services.CodeInvalidResolution},
		{"invalid alphabet", []string{"--alphabet", "aba", "decode", "ab"}, ExitCommandError, services.CodeInvalidAlphabet},
		{"invalid at", []string{"encode", "--at", "noon"}, ExitCommandError, services.CodeInvalidTime},
		{"invalid count", []string{"encode", "-n", "0"}, ExitCommandError, services.CodeInvalidCount},
		{"missing profile file", []string{"--profiles", "testdata/missing.yaml", "encode"}, ExitCommandError, services.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(nil, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, tt.expectedExit, GetExitCode(res.err))
			assert.True(t, Reported(res.err))
			assert.Contains(t, res.stderr, "Error ["+tt.expectedCode+"]")
			assert.Empty(t, res.stdout)
		})
	}
}

func TestErrors_JSON(t *testing.T) {
	res := execute(nil, "--format", "json", "decode", "abc!")
	require.Error(t, res.err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, services.CodeInvalidCharacter, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "abc!")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"--format", "xml", "encode"}},
		{"unknown flag", []string{"encode", "--bogus"}},
		{"decode without ids", []string{"decode"}},
		{"encode with args", []string{"encode", "extra"}},
		{"invalid migrate action", []string{"migrate", "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(nil, tt.args...)
			require.Error(t, res.err)
			assert.False(t, Reported(res.err))
			assert.Contains(t, []int{ExitFailure, ExitCommandError}, GetExitCode(res.err))
		})
	}

	res := execute(nil, "--format", "xml", "encode")
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	res = execute(nil, "encode", "--bogus")
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	res := execute(nil, "migrate", "version")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stderr, "database not configured")
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	res := execute(nil, "serve")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stderr, "SERVER_PORT")
}

func TestServe_InvalidCodecFlags(t *testing.T) {
	res := execute(nil, "--resolution", "fortnight", "serve")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}
