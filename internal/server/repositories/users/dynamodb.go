package users

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/google/uuid"
)

// userItem is the key-value layout of a user. user_id is the partition key.
type userItem struct {
	UserID       string `dynamodbav:"user_id"`
	UserName     string `dynamodbav:"username"`
	PasswordHash string `dynamodbav:"password_hash"`
	CreatedAt    string `dynamodbav:"created_at,omitempty"`
}

func (i userItem) toModel() *models.User {
	u := &models.User{ID: i.UserID, UserName: i.UserName, PasswordHash: i.PasswordHash}
	if t, err := time.Parse(time.RFC3339Nano, i.CreatedAt); err == nil {
		u.CreatedAt = t
	}
	return u
}

// DynamoRepository stores users in a table keyed by user_id. Username
// lookups scan the table and uniqueness is checked before the write, so
// two concurrent registrations of the same name can both succeed.
type DynamoRepository struct {
	api   dynamox.API
	table string
}

func NewDynamoRepository(api dynamox.API, table string) *DynamoRepository {
	return &DynamoRepository{api: api, table: table}
}

func (r *DynamoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := r.GetUserByLogin(ctx, user.UserName); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if err != common.ErrorNotFound {
		return nil, err
	}

	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(userItem{
		UserID:       u.ID,
		UserName:     u.UserName,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("user_id"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build condition: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}

	return &u, nil
}

func (r *DynamoRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("username").Equal(expression.Value(userName))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	items, err := dynamox.ScanAll(ctx, r.api, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	if len(items) == 0 {
		return nil, common.ErrorNotFound
	}

	return decodeUser(items[0])
}

func (r *DynamoRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       map[string]types.AttributeValue{"user_id": dynamox.S(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, common.ErrorNotFound
	}

	return decodeUser(out.Item)
}

func decodeUser(item map[string]types.AttributeValue) (*models.User, error) {
	var ui userItem
	if err := attributevalue.UnmarshalMap(item, &ui); err != nil {
		// Migrated tables may carry a numeric user_id.
		var ok bool
		if ui.UserID, ok = dynamox.StringAttr(item, "user_id"); !ok {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		ui.UserName, _ = dynamox.StringAttr(item, "username")
		ui.PasswordHash, _ = dynamox.StringAttr(item, "password_hash")
		ui.CreatedAt, _ = dynamox.StringAttr(item, "created_at")
	}
	if ui.UserID == "" || ui.UserName == "" {
		return nil, fmt.Errorf("decode user: missing user_id or username")
	}
	return ui.toModel(), nil
}
