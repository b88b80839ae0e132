package launchspec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/launchspec"
)

func TestParseQuantum(t *testing.T) {
	t.Parallel()

	valid := map[string]time.Duration{
		"1":    time.Millisecond,
		"100":  100 * time.Millisecond,
		"2500": 2500 * time.Millisecond,
	}
	for in, want := range valid {
		got, err := launchspec.ParseQuantum(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "12abc", "10 ", "0", "-5", "1.5", "99999999999999999999"} {
		_, err := launchspec.ParseQuantum(in)
		assert.ErrorIs(t, err, launchspec.ErrUsage, "input %q", in)
	}
}

func TestParseSpecs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string
		want []lib.LaunchSpec
	}{
		"single program without arguments": {
			args: []string{"/bin/true"},
			want: []lib.LaunchSpec{{Program: "/bin/true", Args: []string{"/bin/true"}}},
		},
		"two programs separated by delimiter": {
			args: []string{"a", "-x", ":", "b", "y", "z"},
			want: []lib.LaunchSpec{
				{Program: "a", Args: []string{"a", "-x"}},
				{Program: "b", Args: []string{"b", "y", "z"}},
			},
		},
		"bare word after a program is one of its arguments": {
			args: []string{"A", "B", ":", "C"},
			want: []lib.LaunchSpec{
				{Program: "A", Args: []string{"A", "B"}},
				{Program: "C", Args: []string{"C"}},
			},
		},
		"empty segments are skipped": {
			args: []string{":", "a", ":", ":", "b", ":"},
			want: []lib.LaunchSpec{
				{Program: "a", Args: []string{"a"}},
				{Program: "b", Args: []string{"b"}},
			},
		},
		"same program twice stays two specs": {
			args: []string{"a", ":", "a"},
			want: []lib.LaunchSpec{
				{Program: "a", Args: []string{"a"}},
				{Program: "a", Args: []string{"a"}},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := launchspec.ParseSpecs(tt.args, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpecs_Errors(t *testing.T) {
	t.Parallel()

	t.Run("only delimiters", func(t *testing.T) {
		_, err := launchspec.ParseSpecs([]string{":", ":"}, 0)
		assert.ErrorIs(t, err, launchspec.ErrUsage)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := launchspec.ParseSpecs([]string{"a", "1", "2", "3", ":", "b"}, 2)
		require.ErrorIs(t, err, launchspec.ErrUsage)
		assert.True(t, strings.Contains(err.Error(), "too many arguments"), err.Error())
	})

	t.Run("argument limit is inclusive", func(t *testing.T) {
		specs, err := launchspec.ParseSpecs([]string{"a", "1", "2"}, 2)
		require.NoError(t, err)
		assert.Len(t, specs[0].Args, 3)
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	quantum, specs, err := launchspec.Parse([]string{"50", "A", "B", ":", "C"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, quantum)
	require.Len(t, specs, 2)
	assert.Equal(t, "A", specs[0].Program)
	assert.Equal(t, []string{"A", "B"}, specs[0].Args)
	assert.Equal(t, "C", specs[1].Program)

	for _, args := range [][]string{nil, {"100"}, {"x1", "a"}, {"100", ":"}} {
		_, _, err := launchspec.Parse(args, 0)
		assert.ErrorIs(t, err, launchspec.ErrUsage, "args %q", args)
	}
}

func TestParseSpecs_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	args := []string{"a", "b"}
	specs, err := launchspec.ParseSpecs(args, 0)
	require.NoError(t, err)

	args[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, specs[0].Args)
}
