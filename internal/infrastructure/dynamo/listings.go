package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nutribridge-api/internal/domain"
)

// listingItem is the DynamoDB shape of a listing. Times are unix milliseconds;
// allergens and tags are JSON-encoded strings like the SQLite columns.
type listingItem struct {
	ListingID    string   `dynamodbav:"listing_id"`
	Title        string   `dynamodbav:"title"`
	Description  string   `dynamodbav:"description"`
	FoodType     string   `dynamodbav:"food_type"`
	Portions     int      `dynamodbav:"portions"`
	Pincode      string   `dynamodbav:"pincode"`
	Lat          *float64 `dynamodbav:"lat,omitempty"`
	Lng          *float64 `dynamodbav:"lng,omitempty"`
	CookingTime  int64    `dynamodbav:"cooking_time"`
	ReadyUntil   int64    `dynamodbav:"ready_until"`
	ExpiresAt    int64    `dynamodbav:"expires_at"`
	Allergens    string   `dynamodbav:"allergens"`
	Tags         string   `dynamodbav:"tags"`
	HygieneAck   bool     `dynamodbav:"hygiene_ack"`
	PhotoURL     *string  `dynamodbav:"photo_url"`
	DonorName    string   `dynamodbav:"donor_name"`
	DonorPhone   string   `dynamodbav:"donor_phone"`
	DonorEmail   string   `dynamodbav:"donor_email"`
	DonorAddress string   `dynamodbav:"donor_address"`
	CreatedAt    int64    `dynamodbav:"created_at"`
}

func newListingItem(l *domain.Listing) (*listingItem, error) {
	allergens, err := encodeList(l.Allergens)
	if err != nil {
		return nil, fmt.Errorf("encode allergens: %w", err)
	}
	tags, err := encodeList(l.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return &listingItem{
		ListingID:    l.ListingID,
		Title:        l.Title,
		Description:  l.Description,
		FoodType:     l.FoodType,
		Portions:     l.Portions,
		Pincode:      l.Pincode,
		Lat:          l.Lat,
		Lng:          l.Lng,
		CookingTime:  l.CookingTime.UnixMilli(),
		ReadyUntil:   l.ReadyUntil.UnixMilli(),
		ExpiresAt:    l.ReadyUntil.UnixMilli(),
		Allergens:    allergens,
		Tags:         tags,
		HygieneAck:   l.HygieneAck,
		PhotoURL:     l.PhotoURL,
		DonorName:    l.Donor.Name,
		DonorPhone:   l.Donor.Phone,
		DonorEmail:   l.Donor.Email,
		DonorAddress: l.Donor.Address,
		CreatedAt:    l.CreatedAt.UnixMilli(),
	}, nil
}

func (it *listingItem) toDomain() (*domain.Listing, error) {
	l := &domain.Listing{
		ListingID:   it.ListingID,
		Title:       it.Title,
		Description: it.Description,
		FoodType:    it.FoodType,
		Portions:    it.Portions,
		Pincode:     it.Pincode,
		Lat:         it.Lat,
		Lng:         it.Lng,
		CookingTime: time.UnixMilli(it.CookingTime).UTC(),
		ReadyUntil:  time.UnixMilli(it.ReadyUntil).UTC(),
		ExpiresAt:   time.UnixMilli(it.ExpiresAt).UTC(),
		HygieneAck:  it.HygieneAck,
		PhotoURL:    it.PhotoURL,
		Donor: domain.Donor{
			Name:    it.DonorName,
			Phone:   it.DonorPhone,
			Email:   it.DonorEmail,
			Address: it.DonorAddress,
		},
		CreatedAt: time.UnixMilli(it.CreatedAt).UTC(),
	}
	var err error
	if l.Allergens, err = decodeList(it.Allergens); err != nil {
		return nil, fmt.Errorf("decode allergens: %w", err)
	}
	if l.Tags, err = decodeList(it.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return l, nil
}

// ListingRepo provides typed DynamoDB operations for the listings table.
type ListingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewListingRepo(client *dynamodb.Client, tableName string) *ListingRepo {
	return &ListingRepo{client: client, tableName: tableName}
}

func (r *ListingRepo) Put(ctx context.Context, l *domain.Listing) error {
	it, err := newListingItem(l)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldListingID + ")"),
	})
	if err != nil {
		return fmt.Errorf("put listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldListingID, listingID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	var it listingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.toDomain()
}

// ListLive scans for listings whose expires_at is after now, optionally narrowed
// to pincodes containing the given substring. Results are ordered by id, which
// for ULIDs is insertion order.
func (r *ListingRepo) ListLive(ctx context.Context, now time.Time, pincode string) ([]domain.Listing, error) {
	filter := "#exp > :now"
	names := map[string]string{"#exp": fieldExpiresAt}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberN{Value: fmt.Sprint(now.UnixMilli())},
	}
	if pincode != "" {
		filter += " AND contains(#pin, :pin)"
		names["#pin"] = fieldPincode
		values[":pin"] = &types.AttributeValueMemberS{Value: pincode}
	}
	out, err := r.scan(ctx, filter, names, values)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return out, nil
}

// FindLiveByTitle returns the oldest live listing with exactly this title.
func (r *ListingRepo) FindLiveByTitle(ctx context.Context, title string, now time.Time) (*domain.Listing, error) {
	out, err := r.scan(ctx, "#t = :t AND #exp > :now",
		map[string]string{"#t": fieldTitle, "#exp": fieldExpiresAt},
		map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberS{Value: title},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprint(now.UnixMilli())},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find listing by title: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	return &out[0], nil
}

func (r *ListingRepo) SetPhotoURL(ctx context.Context, listingID, url string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldPhotoURL: url})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldListingID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldListingID, listingID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ListingRepo) scan(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue) ([]domain.Listing, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	})
	var out []domain.Listing
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []listingItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for i := range items {
			l, err := items[i].toDomain()
			if err != nil {
				return nil, err
			}
			out = append(out, *l)
		}
	}
	sortListingsByID(out)
	return out, nil
}

func sortListingsByID(ls []domain.Listing) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].ListingID < ls[j].ListingID })
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(s), &out)
	return out, err
}
