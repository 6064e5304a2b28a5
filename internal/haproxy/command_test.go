package haproxy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCommand_Valid(t *testing.T) {
	tests := []string{
		"",
		"show stat",
		`set var proc.x str(a\;b)`,
		`\;`,
		`show sess \; show info\;`,
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			cmd, err := NewCommand(text)
			require.NoError(t, err)
			require.Equal(t, text, cmd.String())
			require.Equal(t, []byte(text+"\r\n"), cmd.WireBytes())
		})
	}
}

func TestNewCommand_UnescapedSemicolon(t *testing.T) {
	tests := []string{
		";show stat",
		"show stat;show info",
		"show stat;",
		`show stat\;;`,
		`show\ stat;`,
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := NewCommand(text)
			require.ErrorIs(t, err, ErrRequireEscapeSemicolon)
		})
	}
}

func TestCanonicalCommands(t *testing.T) {
	for _, cmd := range []Command{ShowInfo(), ShowStat(), ShowEnv(), ShowInfoJSON(), ShowStatJSON()} {
		parsed, err := NewCommand(cmd.String())
		require.NoError(t, err)
		require.Equal(t, cmd, parsed)
	}
	require.Equal(t, "show stat", ShowStat().String())
	require.Equal(t, []byte("show info\r\n"), ShowInfo().WireBytes())
}

func TestCommands_WireBytes(t *testing.T) {
	a := ShowInfo()
	b, err := NewCommand(`set var proc.x str(a\;b)`)
	require.NoError(t, err)

	cs := Commands{a, b}
	require.Equal(t, `show info;set var proc.x str(a\;b)`, cs.String())
	require.Equal(t, []byte("show info;"+b.String()+"\r\n"), cs.WireBytes())
	require.Equal(t, []byte("\r\n"), Commands{}.WireBytes())
}
