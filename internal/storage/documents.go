package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by DocumentStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used by DocumentStore.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// DocumentStore keeps patient documents in S3 and hands out time-limited
// signed URLs for viewing. If bucket is empty, all operations report the
// store as disabled.
type DocumentStore struct {
	bucket    string
	client    S3API
	presigner PresignAPI
	urlTTL    time.Duration
	log       zerolog.Logger
}

// NewDocumentStore creates a DocumentStore.
func NewDocumentStore(client S3API, presigner PresignAPI, bucket string, urlTTL time.Duration, log zerolog.Logger) *DocumentStore {
	return &DocumentStore{
		bucket:    bucket,
		client:    client,
		presigner: presigner,
		urlTTL:    urlTTL,
		log:       log,
	}
}

// Enabled returns true if document storage is configured.
func (s *DocumentStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

// Upload writes a document under key.
func (s *DocumentStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if !s.Enabled() {
		return fmt.Errorf("storage: document store not configured")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Msg("document uploaded")
	return nil
}

// SignedURL returns a time-limited GET URL for a stored document.
func (s *DocumentStore) SignedURL(ctx context.Context, key string) (string, error) {
	if !s.Enabled() || s.presigner == nil {
		return "", fmt.Errorf("storage: document store not configured")
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes a stored document. Missing objects are not an error.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %s: %w", key, err)
	}
	return nil
}

// DocumentKey builds the storage key for a patient document. The random
// component keeps repeated uploads of the same filename from colliding.
func DocumentKey(clinicID, patientID, fileName string) string {
	return path.Join("patients", clinicID, patientID,
		fmt.Sprintf("%s-%s", uuid.New().String(), fileName))
}
