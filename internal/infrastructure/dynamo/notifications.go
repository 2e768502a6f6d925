package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-notification-hub/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldNotificationID + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrConflict)
	}
	if err != nil {
		return unavailable("put notification", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldNotificationID, notificationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unavailable("get notification", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotificationNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return &n, nil
}

// Update writes back the mutable fields of n. The item must already exist.
func (r *NotificationRepo) Update(ctx context.Context, n *domain.Notification) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldSubject:    n.Subject,
		fieldBody:       n.Body,
		fieldStatus:     n.Status,
		fieldRead:       n.Read,
		fieldReadAt:     n.ReadAt,
		fieldSentAt:     n.SentAt,
		fieldRetryCount: n.RetryCount,
		fieldUpdatedAt:  n.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldNotificationID, n.NotificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldNotificationID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrNotificationNotFound)
	}
	if err != nil {
		return unavailable("update notification", err)
	}
	return nil
}

// ListByRecipient queries the recipient-created_at GSI.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipient string) ([]domain.Notification, error) {
	return r.query(ctx, indexRecipientCreated, fieldRecipient, recipient)
}

// ListByStatus queries the status-created_at GSI.
func (r *NotificationRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Notification, error) {
	return r.query(ctx, indexStatusCreated, fieldStatus, string(status))
}

func (r *NotificationRepo) query(ctx context.Context, index, key, value string) ([]domain.Notification, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": key,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	var notifications []domain.Notification
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query "+index, err)
		}
		var batch []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal notifications: %w", err)
		}
		notifications = append(notifications, batch...)
	}
	sortByCreated(notifications)
	return notifications, nil
}

func (r *NotificationRepo) Scan(ctx context.Context) ([]domain.Notification, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	var notifications []domain.Notification
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("scan notifications", err)
		}
		var batch []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal notifications: %w", err)
		}
		notifications = append(notifications, batch...)
	}
	sortByCreated(notifications)
	return notifications, nil
}

// sortByCreated orders in Go because RFC3339Nano strings do not sort
// lexicographically once trailing zeros are trimmed.
func sortByCreated(ns []domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.Before(ns[j].CreatedAt) })
}
