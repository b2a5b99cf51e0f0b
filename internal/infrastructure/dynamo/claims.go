package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nutribridge-api/internal/domain"
)

type claimItem struct {
	ClaimID        string  `dynamodbav:"claim_id"`
	ListingID      string  `dynamodbav:"listing_id"`
	ListingTitle   string  `dynamodbav:"listing_title"`
	RequesterName  string  `dynamodbav:"requester_name"`
	RequesterPhone string  `dynamodbav:"requester_phone,omitempty"` // sparse GSI key
	DonorPhone     string  `dynamodbav:"donor_phone,omitempty"`
	Quantity       int     `dynamodbav:"quantity"`
	Status         string  `dynamodbav:"status"`
	OTP            *string `dynamodbav:"otp"`
	CreatedAt      int64   `dynamodbav:"created_at"`
	UpdatedAt      int64   `dynamodbav:"updated_at"`
}

func newClaimItem(c *domain.Claim) *claimItem {
	return &claimItem{
		ClaimID:        c.ClaimID,
		ListingID:      c.ListingID,
		ListingTitle:   c.ListingTitle,
		RequesterName:  c.RequesterName,
		RequesterPhone: c.RequesterPhone,
		DonorPhone:     c.DonorPhone,
		Quantity:       c.Quantity,
		Status:         string(c.Status),
		OTP:            c.OTP,
		CreatedAt:      c.CreatedAt.UnixMilli(),
		UpdatedAt:      c.UpdatedAt.UnixMilli(),
	}
}

func (it *claimItem) toDomain() *domain.Claim {
	return &domain.Claim{
		ClaimID:        it.ClaimID,
		ListingID:      it.ListingID,
		ListingTitle:   it.ListingTitle,
		RequesterName:  it.RequesterName,
		RequesterPhone: it.RequesterPhone,
		DonorPhone:     it.DonorPhone,
		Quantity:       it.Quantity,
		Status:         domain.ClaimStatus(it.Status),
		OTP:            it.OTP,
		CreatedAt:      time.UnixMilli(it.CreatedAt).UTC(),
		UpdatedAt:      time.UnixMilli(it.UpdatedAt).UTC(),
	}
}

// ClaimRepo provides typed DynamoDB operations for the claims table.
type ClaimRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewClaimRepo(client *dynamodb.Client, tableName string) *ClaimRepo {
	return &ClaimRepo{client: client, tableName: tableName}
}

func (r *ClaimRepo) Put(ctx context.Context, c *domain.Claim) error {
	item, err := attributevalue.MarshalMap(newClaimItem(c))
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldClaimID + ")"),
	})
	if err != nil {
		return fmt.Errorf("put claim: %w", err)
	}
	return nil
}

func (r *ClaimRepo) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldClaimID, claimID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("claim not found: %w", domain.ErrNotFound)
	}
	var it claimItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.toDomain(), nil
}

// Transition moves a claim from one status to another and sets its code in a
// single conditional update. A failed condition with no old item means the claim
// does not exist; otherwise the status moved underneath us and ErrConflict is returned.
func (r *ClaimRepo) Transition(ctx context.Context, claimID string, from, to domain.ClaimStatus, otp *string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    string(to),
		fieldOTP:       otp,
		fieldUpdatedAt: at.UnixMilli(),
	})
	if err != nil {
		return err
	}
	ue.Names["#cs"] = fieldStatus
	ue.Values[":from"] = &types.AttributeValueMemberS{Value: string(from)}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(fieldClaimID, claimID),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String("#cs = :from"),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return fmt.Errorf("claim not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("claim %s is not %s: %w", claimID, from, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	return nil
}

func (r *ClaimRepo) ListByListing(ctx context.Context, listingID string) ([]domain.Claim, error) {
	return r.queryGSI(ctx, indexClaimsByListing, fieldListingID, listingID)
}

func (r *ClaimRepo) ListByDonorPhone(ctx context.Context, phone string) ([]domain.Claim, error) {
	return r.queryGSI(ctx, indexClaimsByDonor, fieldDonorPhone, phone)
}

func (r *ClaimRepo) ListByRequesterPhone(ctx context.Context, phone string) ([]domain.Claim, error) {
	return r.queryGSI(ctx, indexClaimsByRequester, fieldRequesterPhone, phone)
}

// queryGSI pages through every claim with attr = value. Each index is sorted on
// claim_id, so results come back in creation order.
func (r *ClaimRepo) queryGSI(ctx context.Context, index, attr, value string) ([]domain.Claim, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})
	var out []domain.Claim
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", index, err)
		}
		var items []claimItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for i := range items {
			out = append(out, *items[i].toDomain())
		}
	}
	return out, nil
}
