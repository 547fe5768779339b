//go:build integration

package s3_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
)

// TestGatewayWithMinIO requires a running MinIO server:
//
//	docker run -p 9000:9000 minio/minio server /data
//	MINIO_INTEGRATION_TEST=1 go test -tags integration ./pkg/simplemedia/storage/s3/...
func TestGatewayWithMinIO(t *testing.T) {
	if os.Getenv("MINIO_INTEGRATION_TEST") == "" {
		t.Skip("Skipping MinIO integration test. Set MINIO_INTEGRATION_TEST=1 to run.")
	}

	bucket := "media-test-" + time.Now().Format("20060102150405")
	gateway, err := s3.New(s3.Config{
		Region:                 "us-east-1",
		Bucket:                 bucket,
		AccessKeyID:            "minioadmin",
		SecretAccessKey:        "minioadmin",
		Endpoint:               "http://localhost:9000",
		UsePathStyle:           true,
		PublicBaseURL:          "http://localhost:9000/" + bucket,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	content := "Hello, MinIO! This is an integration test."

	result, err := gateway.Upload(ctx, []byte(content), simplemedia.AssetVideo)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ExternalID)
	assert.True(t, strings.HasPrefix(result.URL, "http://localhost:9000/"+bucket+"/"))

	// Deleting twice is not an error
	require.NoError(t, gateway.Delete(ctx, result.ExternalID, simplemedia.AssetVideo))
	require.NoError(t, gateway.Delete(ctx, result.ExternalID, simplemedia.AssetVideo))

	// The object is gone; anonymous reads on a private bucket are refused either way
	resp, err := http.Get(result.URL)
	if err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		assert.NotEqual(t, http.StatusOK, resp.StatusCode)
	}
}
