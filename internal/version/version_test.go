package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserAgent(t *testing.T) {
	require.NotEmpty(t, Version)
	require.Equal(t, "overfastsite/"+Version, UserAgent())
	require.NotEmpty(t, BuildTime)
	require.NotEmpty(t, GitCommit)
}
