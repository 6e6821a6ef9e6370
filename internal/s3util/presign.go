// Package s3util wraps the S3 operations the service needs: presigned
// upload URLs for the browser, and JSON object round-trips for analysis
// results.
package s3util

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Presigner is the subset of *s3.PresignClient we use. Handlers take the
// interface so tests can substitute a fake.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignUpload generates a presigned PUT URL for a direct browser upload.
// The URL is bound to the given content type, so the client must send the
// same Content-Type header it requested.
func PresignUpload(ctx context.Context, presigner Presigner, bucket, key, contentType string, expiry time.Duration) (string, error) {
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presigning upload for s3://%s/%s: %w", bucket, key, err)
	}

	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("contentType", contentType).
		Dur("expiry", expiry).
		Msg("Generated presigned upload URL")
	return req.URL, nil
}
