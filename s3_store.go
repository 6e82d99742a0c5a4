package uavledger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const flightKeyPrefix = "flights/"

// flightKey maps a flight identifier to its object key in the bucket.
func flightKey(flightID string) string {
	return flightKeyPrefix + flightID + ".log"
}

// s3Store is the production ObjectStore: one object per flight in a
// version-enabled bucket, one object version per snapshot.
type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds the object store client from explicit settings. No
// ambient or process-wide AWS state is consulted beyond the default
// credential chain when no static keys are configured.
func NewS3Store(ctx context.Context, cfg S3Config) (ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return &s3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *s3Store) ListFlights(ctx context.Context) ([]string, error) {
	var flights []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(flightKeyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			id := strings.TrimSuffix(strings.TrimPrefix(key, flightKeyPrefix), ".log")
			flights = append(flights, id)
		}
		if !out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return flights, nil
}

func (s *s3Store) ListVersions(ctx context.Context, flightID string) ([]VersionInfo, error) {
	key := flightKey(flightID)
	out, err := s.client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	var infos []VersionInfo
	for _, v := range out.Versions {
		// prefix listing can surface sibling keys
		if aws.ToString(v.Key) != key {
			continue
		}
		infos = append(infos, VersionInfo{
			VersionID:  aws.ToString(v.VersionId),
			ObservedAt: aws.ToTime(v.LastModified),
			Size:       v.Size,
		})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].ObservedAt.Before(infos[j].ObservedAt)
	})
	return infos, nil
}

func (s *s3Store) GetVersionBody(ctx context.Context, flightID, versionID string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket:    aws.String(s.bucket),
		Key:       aws.String(flightKey(flightID)),
		VersionId: aws.String(versionID),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *s3Store) PutVersion(ctx context.Context, flightID string, body []byte) (VersionInfo, error) {
	key := flightKey(flightID)
	put, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return VersionInfo{}, err
	}

	info := VersionInfo{
		VersionID:  aws.ToString(put.VersionId),
		ObservedAt: time.Now().UTC(),
		Size:       int64(len(body)),
	}
	// HeadObject gives the authoritative LastModified for the new version.
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		info.ObservedAt = aws.ToTime(head.LastModified)
		if info.VersionID == "" {
			info.VersionID = aws.ToString(head.VersionId)
		}
	}
	return info, nil
}
