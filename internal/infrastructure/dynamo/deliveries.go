package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notification-hub/internal/domain"
)

// DeliveryRepo provides append-only DynamoDB operations for the delivery_log table.
type DeliveryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeliveryRepo(client *dynamodb.Client, tableName string) *DeliveryRepo {
	return &DeliveryRepo{client: client, tableName: tableName}
}

// Append refuses to overwrite an existing entry.
func (r *DeliveryRepo) Append(ctx context.Context, e domain.DeliveryEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal delivery entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldEntryID + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("delivery entry %s: %w", e.EntryID, domain.ErrConflict)
	}
	if err != nil {
		return unavailable("append delivery entry", err)
	}
	return nil
}

func (r *DeliveryRepo) ListByNotification(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String(fieldNotificationID + " = :nid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":nid": &types.AttributeValueMemberS{Value: notificationID},
		},
		ConsistentRead: aws.Bool(true),
	})
	var entries []domain.DeliveryEntry
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query delivery log", err)
		}
		var batch []domain.DeliveryEntry
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal delivery entries: %w", err)
		}
		entries = append(entries, batch...)
	}
	return entries, nil
}

func (r *DeliveryRepo) Scan(ctx context.Context) ([]domain.DeliveryEntry, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	var entries []domain.DeliveryEntry
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("scan delivery log", err)
		}
		var batch []domain.DeliveryEntry
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal delivery entries: %w", err)
		}
		entries = append(entries, batch...)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].EntryID < entries[j].EntryID })
	return entries, nil
}
