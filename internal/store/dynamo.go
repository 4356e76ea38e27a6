package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"city-events-pipeline/internal/models"
)

// DynamoStore implements EventStore on a single DynamoDB table with
// composite keys PK="REGION#<region>", SK="EVENT#<id>". Filtering
// beyond the region happens in memory; result sets per region are
// small enough that a region query is the only access path needed.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// eventItem is the DynamoDB row shape for one event.
type eventItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	ID           string   `dynamodbav:"ID"`
	Title        string   `dynamodbav:"Title"`
	ISODate      string   `dynamodbav:"ISODate"`
	VenueName    string   `dynamodbav:"VenueName"`
	VenueAddress string   `dynamodbav:"VenueAddress,omitempty"`
	City         string   `dynamodbav:"City"`
	Region       string   `dynamodbav:"Region"`
	SourceURL    string   `dynamodbav:"SourceURL,omitempty"`
	ImageURL     string   `dynamodbav:"ImageURL,omitempty"`
	SourceName   string   `dynamodbav:"SourceName"`
	Categories   []string `dynamodbav:"Categories"`
	Curated      bool     `dynamodbav:"Curated"`
}

// NewDynamoStore creates a store over an existing DynamoDB table.
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Close is a no-op; the SDK client holds no resources needing release.
func (s *DynamoStore) Close() error { return nil }

// UpsertEvents writes each event with PutItem; same-ID events replace
// the stored row.
func (s *DynamoStore) UpsertEvents(ctx context.Context, events []models.Event) error {
	for _, e := range events {
		item, err := attributevalue.MarshalMap(toItem(e))
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
		}
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.table),
			Item:      item,
		})
		if err != nil {
			return fmt.Errorf("failed to put event %s: %w", e.ID, err)
		}
	}
	return nil
}

// QueryEvents fetches a region's events and applies the remaining
// filters and pagination in memory. A filter without a region falls
// back to a table scan.
func (s *DynamoStore) QueryEvents(ctx context.Context, filter Filter) ([]models.Event, int, error) {
	items, err := s.fetch(ctx, filter.Region)
	if err != nil {
		return nil, 0, err
	}

	var matched []models.Event
	for _, item := range items {
		e := fromItem(item)
		if filter.matches(e) {
			matched = append(matched, e)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ISODate != matched[j].ISODate {
			return matched[i].ISODate < matched[j].ISODate
		}
		return matched[i].Title < matched[j].Title
	})

	return filter.page(matched), len(matched), nil
}

// DeleteByRegion removes every event stored under a region's partition.
func (s *DynamoStore) DeleteByRegion(ctx context.Context, region string) error {
	items, err := s.fetch(ctx, region)
	if err != nil {
		return err
	}
	for _, item := range items {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.table),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete event %s: %w", item.ID, err)
		}
	}
	return nil
}

func (s *DynamoStore) fetch(ctx context.Context, region string) ([]eventItem, error) {
	var items []eventItem

	if region == "" {
		paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
			TableName: aws.String(s.table),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to scan events: %w", err)
			}
			var pageItems []eventItem
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
				return nil, fmt.Errorf("failed to unmarshal events: %w", err)
			}
			items = append(items, pageItems...)
		}
		return items, nil
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: regionKey(region)},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query events for region %s: %w", region, err)
		}
		var pageItems []eventItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events: %w", err)
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

func regionKey(region string) string {
	return "REGION#" + region
}

func toItem(e models.Event) eventItem {
	return eventItem{
		PK:           regionKey(e.Region),
		SK:           "EVENT#" + e.ID,
		ID:           e.ID,
		Title:        e.Title,
		ISODate:      e.ISODate,
		VenueName:    e.Venue.Name,
		VenueAddress: e.Venue.Address,
		City:         e.Venue.City,
		Region:       e.Region,
		SourceURL:    e.SourceURL,
		ImageURL:     e.ImageURL,
		SourceName:   e.SourceName,
		Categories:   e.Categories,
		Curated:      e.Curated,
	}
}

func fromItem(item eventItem) models.Event {
	return models.Event{
		ID:      item.ID,
		Title:   item.Title,
		ISODate: item.ISODate,
		Venue: models.Venue{
			Name:    item.VenueName,
			Address: item.VenueAddress,
			City:    item.City,
		},
		Region:     item.Region,
		SourceURL:  item.SourceURL,
		ImageURL:   item.ImageURL,
		SourceName: item.SourceName,
		Categories: item.Categories,
		Curated:    item.Curated,
	}
}
