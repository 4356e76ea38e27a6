package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"city-events-pipeline/internal/models"
)

// SnapshotPublisher uploads the latest run's feed JSON to S3 for
// static consumption by frontends.
type SnapshotPublisher struct {
	client *s3.Client
	bucket string
	region string
}

// NewSnapshotPublisher creates a publisher for the given bucket.
func NewSnapshotPublisher(client *s3.Client, bucket, awsRegion string) *SnapshotPublisher {
	return &SnapshotPublisher{client: client, bucket: bucket, region: awsRegion}
}

// Publish uploads the feed under the given key and returns its public
// URL. The feed metadata records which sources contributed.
func (p *SnapshotPublisher) Publish(ctx context.Context, key, region string, events []models.Event) (string, error) {
	feed := models.FeedOutput{
		Metadata: models.NewFeedMetadata(region, len(events), sourceNames(events)),
		Events:   events,
	}

	jsonData, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal feed to JSON: %w", err)
	}

	key = strings.TrimPrefix(key, "/")
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jsonData),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=300"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload feed to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key), nil
}

func sourceNames(events []models.Event) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range events {
		if e.SourceName != "" && !seen[e.SourceName] {
			seen[e.SourceName] = true
			names = append(names, e.SourceName)
		}
	}
	return names
}
