package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

func TestFSGateway(t *testing.T) {
	dir := t.TempDir()
	gateway, err := New(Config{BaseDir: dir, PublicBaseURL: "http://localhost:8080/media"})
	require.NoError(t, err)

	ctx := context.Background()
	result, err := gateway.Upload(ctx, []byte("video bytes"), simplemedia.AssetVideo)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/"+result.ExternalID, result.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.ExternalID)))
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))

	require.NoError(t, gateway.Delete(ctx, result.ExternalID, simplemedia.AssetVideo))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(result.ExternalID)))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, gateway.Delete(ctx, result.ExternalID, simplemedia.AssetVideo))
}

func TestFSGatewayRejectsEscapingKeys(t *testing.T) {
	gateway, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"../outside", "/etc/passwd", "", "a/../../b"} {
		err := gateway.Delete(context.Background(), key, simplemedia.AssetVideo)
		assert.Error(t, err, key)
	}
}

func TestFSGatewayRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.EqualError(t, err, "base directory is required")
}
