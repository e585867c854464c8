// Package storage persists article PDF attachments in an S3-compatible
// bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"digital-library/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads attachments to a fixed bucket and exposes them under
// stable public URLs.
type S3Store struct {
	Client *s3.Client
	Config *config.Config
}

// NewS3Store creates an S3 client for the configured endpoint.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}
	return &S3Store{Client: s3.NewFromConfig(awsCfg), Config: cfg}, nil
}

// Save uploads one attachment under articles/<name> and returns the stored
// key together with its absolute URL. The URL is rooted at PublicBaseURL
// when configured, falling back to the raw bucket endpoint.
func (s *S3Store) Save(name string, content []byte) (string, string, error) {
	key := "articles/" + strings.TrimPrefix(name, "/")
	_, err := s.Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: &s.Config.S3Bucket,
		Key:    &key,
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", "", fmt.Errorf("uploading %s: %w", key, err)
	}
	base := s.Config.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("%s/%s", s.Config.S3URL, s.Config.S3Bucket)
	}
	return key, fmt.Sprintf("%s/%s", strings.TrimSuffix(base, "/"), key), nil
}
