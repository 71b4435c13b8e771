package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	err         error
}

func (m *mockS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

type mockPresigner struct {
	url string
	err error
}

func (m *mockPresigner) PresignGetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &v4.PresignedHTTPRequest{URL: m.url}, nil
}

func TestDocumentStoreEnabled(t *testing.T) {
	log := zerolog.Nop()

	assert.True(t, NewDocumentStore(&mockS3{}, &mockPresigner{}, "docs", time.Minute, log).Enabled())
	assert.False(t, NewDocumentStore(&mockS3{}, &mockPresigner{}, "", time.Minute, log).Enabled())
	assert.False(t, NewDocumentStore(nil, nil, "docs", time.Minute, log).Enabled())

	var nilStore *DocumentStore
	assert.False(t, nilStore.Enabled())
}

func TestUpload(t *testing.T) {
	client := &mockS3{}
	store := NewDocumentStore(client, &mockPresigner{}, "docs", time.Minute, zerolog.Nop())

	err := store.Upload(context.Background(), "patients/c1/p1/report.pdf", "application/pdf", strings.NewReader("data"))
	require.NoError(t, err)

	require.NotNil(t, client.putInput)
	assert.Equal(t, "docs", *client.putInput.Bucket)
	assert.Equal(t, "patients/c1/p1/report.pdf", *client.putInput.Key)
	assert.Equal(t, "application/pdf", *client.putInput.ContentType)
}

func TestUploadDisabled(t *testing.T) {
	store := NewDocumentStore(nil, nil, "", time.Minute, zerolog.Nop())

	err := store.Upload(context.Background(), "key", "text/plain", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestSignedURL(t *testing.T) {
	store := NewDocumentStore(&mockS3{}, &mockPresigner{url: "https://signed.example/doc"}, "docs", time.Minute, zerolog.Nop())

	url, err := store.SignedURL(context.Background(), "patients/c1/p1/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/doc", url)
}

func TestDeleteDisabledIsNoop(t *testing.T) {
	store := NewDocumentStore(nil, nil, "", time.Minute, zerolog.Nop())
	assert.NoError(t, store.Delete(context.Background(), "key"))
}

func TestDocumentKey(t *testing.T) {
	key := DocumentKey("clinic-1", "patient-1", "scan.png")

	assert.True(t, strings.HasPrefix(key, "patients/clinic-1/patient-1/"))
	assert.True(t, strings.HasSuffix(key, "-scan.png"))

	// The random component keeps same-name uploads apart.
	assert.NotEqual(t, key, DocumentKey("clinic-1", "patient-1", "scan.png"))
}
