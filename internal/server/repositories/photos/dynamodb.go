package photos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/google/uuid"
)

// Attribute names of the photos table. id is the partition key.
const (
	attrID            = "id"
	attrFilename      = "filename"
	attrDescription   = "description"
	attrDescriptionLC = "description_lc"
	attrUserID        = "user_id"
	attrCreatedAt     = "created_at"
)

// DynamoRepository stores photos in a key-value table. Search is a full
// table scan. A lowercased copy of the description is written alongside
// the original so that matching can ignore case; items without it (bulk
// migrated ones) are matched case-sensitively.
type DynamoRepository struct {
	api   dynamox.API
	table string
}

func NewDynamoRepository(api dynamox.API, table string) *DynamoRepository {
	return &DynamoRepository{api: api, table: table}
}

func (r *DynamoRepository) Search(ctx context.Context, query string) ([]*models.Photo, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(r.table)}

	if query != "" {
		filter := expression.Contains(expression.Name(attrDescriptionLC), strings.ToLower(query)).
			Or(expression.Contains(expression.Name(attrDescription), query))
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, fmt.Errorf("build filter: %w", err)
		}
		in.FilterExpression = expr.Filter()
		in.ExpressionAttributeNames = expr.Names()
		in.ExpressionAttributeValues = expr.Values()
	}

	items, err := dynamox.ScanAll(ctx, r.api, in)
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}

	result := make([]*models.Photo, 0, len(items))
	for _, item := range items {
		p, err := decodePhoto(item)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, nil
}

func (r *DynamoRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	p := *photo
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	item := map[string]types.AttributeValue{
		attrID:            dynamox.S(p.ID),
		attrFilename:      dynamox.S(p.Filename),
		attrDescription:   dynamox.S(p.Description),
		attrDescriptionLC: dynamox.S(strings.ToLower(p.Description)),
		attrUserID:        dynamox.S(p.UserID),
		attrCreatedAt:     dynamox.S(p.CreatedAt.Format(time.RFC3339Nano)),
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrID))).
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

	return &p, nil
}

func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       map[string]types.AttributeValue{attrID: dynamox.S(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, common.ErrorNotFound
	}

	return decodePhoto(out.Item)
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	out, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          map[string]types.AttributeValue{attrID: dynamox.S(id)},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("dynamodb error: %w", err)
	}
	if len(out.Attributes) == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func decodePhoto(item map[string]types.AttributeValue) (*models.Photo, error) {
	p := &models.Photo{}

	var ok bool
	if p.ID, ok = dynamox.StringAttr(item, attrID); !ok {
		return nil, fmt.Errorf("decode photo: missing %s", attrID)
	}
	if p.Filename, ok = dynamox.StringAttr(item, attrFilename); !ok {
		return nil, fmt.Errorf("decode photo %s: missing %s", p.ID, attrFilename)
	}
	p.Description, _ = dynamox.StringAttr(item, attrDescription)
	p.UserID, _ = dynamox.StringAttr(item, attrUserID)

	if ts, ok := dynamox.StringAttr(item, attrCreatedAt); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			p.CreatedAt = t
		}
	}

	return p, nil
}
