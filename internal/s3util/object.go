package s3util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// ObjectStore is the subset of *s3.Client we use for object round-trips.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PutJSON marshals v and writes it to s3://bucket/key with an
// application/json content type.
func PutJSON(ctx context.Context, store ObjectStore, bucket, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling object for s3://%s/%s: %w", bucket, key, err)
	}

	_, err = store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("writing s3://%s/%s: %w", bucket, key, err)
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(body)).Msg("Stored JSON object")
	return nil
}

// GetJSON downloads s3://bucket/key and unmarshals it into v.
func GetJSON(ctx context.Context, store ObjectStore, bucket, key string, v any) error {
	out, err := store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// GetJSONFromURI is GetJSON for a full s3:// URI, as returned in Data
// Automation job metadata.
func GetJSONFromURI(ctx context.Context, store ObjectStore, uri string, v any) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}
	return GetJSON(ctx, store, bucket, key, v)
}
