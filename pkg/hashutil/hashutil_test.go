package hashutil_test

import (
	"testing"

	"github.com/parkscout/parkscout/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes_SHA256(t *testing.T) {
	got, err := hashutil.HashBytes([]byte("hello"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)
}

func TestHashBytes_BLAKE3_Deterministic(t *testing.T) {
	first, err := hashutil.HashBytes([]byte("hello"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	second, err := hashutil.HashBytes([]byte("hello"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other, err := hashutil.HashBytes([]byte("hello!"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestHashBytes_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("hello"), "md5")
	assert.Error(t, err)
}
