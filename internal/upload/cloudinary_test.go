package upload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignUpload(t *testing.T) {
	// Precomputed: sha256("folder=pedidos&timestamp=1700000000secret").
	got := signUpload("pedidos", 1700000000, "secret")
	require.Equal(t, "8cea1db5c8177e0e5e42a4a6b2c45ca9f0b67c7c3bd41b286e27cdb881f38901", got)
}

func TestSignUploadVariesWithInputs(t *testing.T) {
	base := signUpload("pedidos", 1700000000, "secret")
	require.NotEqual(t, base, signUpload("pedidos", 1700000001, "secret"))
	require.NotEqual(t, base, signUpload("pedidos", 1700000000, "other"))
	require.NotEqual(t, base, signUpload("receipts", 1700000000, "secret"))
}

func TestConfigured(t *testing.T) {
	require.True(t, NewCloudinary("demo", "key", "secret").Configured())
	require.False(t, NewCloudinary("", "key", "secret").Configured())
	require.False(t, NewCloudinary("demo", "", "").Configured())
}
