package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type level string

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]level{"Debug": "debug", "info": "info"}, "info")

	require.Equal(t, level("debug"), n.Normalize("  DEBUG "))
	require.Equal(t, level("info"), n.Normalize("verbose"))
	require.Equal(t, []string{"debug", "info"}, n.ValidKeys())

	_, err := n.NormalizeWithError("verbose")
	require.ErrorContains(t, err, "verbose")

	v, err := n.NormalizeWithError("Info")
	require.NoError(t, err)
	require.Equal(t, level("info"), v)
}
