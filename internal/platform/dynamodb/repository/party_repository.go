package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	commonErrors "github.com/hirosato/trade-ledger/backend/internal/domain/errors"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
	"github.com/hirosato/trade-ledger/backend/internal/platform/dynamodb/client"
)

// transactionCounter tells whether a party still has ledger history
type transactionCounter interface {
	HasTransactions(ctx context.Context, partyID string) (bool, error)
}

// DynamoDBPartyRepository implements the party.Repository interface
type DynamoDBPartyRepository struct {
	client       client.Client
	table        string
	logger       *slog.Logger
	transactions transactionCounter
	pageSize     int32
}

// NewDynamoDBPartyRepository creates a new DynamoDBPartyRepository
func NewDynamoDBPartyRepository(client client.Client, table string, logger *slog.Logger, transactions transactionCounter) *DynamoDBPartyRepository {
	return &DynamoDBPartyRepository{
		client:       client,
		table:        table,
		logger:       logger,
		transactions: transactions,
		pageSize:     defaultPageSize,
	}
}

// CreateParty stores a new party profile
func (r *DynamoDBPartyRepository) CreateParty(ctx context.Context, p *party.Party) (*party.Party, error) {
	if p.PartyID == "" {
		p.PartyID = uuid.New().String()
	}

	if err := r.put(ctx, p, "attribute_not_exists(PK)"); err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewConflictError("party already exists")
		}
		return nil, commonErrors.NewInternalError("failed to create party", err)
	}
	return p, nil
}

// GetParty retrieves a party profile
func (r *DynamoDBPartyRepository) GetParty(ctx context.Context, partyID string) (*party.Party, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partyPK(partyID)},
			"SK": &types.AttributeValueMemberS{Value: partyProfileSK},
		},
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to get party", err)
	}
	if len(result.Item) == 0 {
		return nil, commonErrors.NewNotFoundError("party not found")
	}

	var item partyItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal party", err)
	}

	p, err := item.toParty()
	if err != nil {
		return nil, commonErrors.NewInternalError("stored party is corrupt", err)
	}
	return p, nil
}

// ListParties lists parties through GSI1, ordered by kind then name
func (r *DynamoDBPartyRepository) ListParties(ctx context.Context, kind party.Kind) ([]*party.Party, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(partiesGSI1PK))
	if kind != "" {
		keyCondition = keyCondition.And(expression.Key("GSI1SK").BeginsWith(string(kind) + "#"))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(gsi1Index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
		Limit:                     aws.Int32(r.pageSize),
	}

	var parties []*party.Party
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewInternalError("failed to query parties", err)
		}

		var page []partyItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal parties", err)
		}
		for _, item := range page {
			p, err := item.toParty()
			if err != nil {
				r.logger.Error("skipping corrupt party", "partyId", item.PartyID, "error", err)
				continue
			}
			parties = append(parties, p)
		}

		if len(result.LastEvaluatedKey) == 0 {
			return parties, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// UpdateParty replaces an existing party profile
func (r *DynamoDBPartyRepository) UpdateParty(ctx context.Context, p *party.Party) (*party.Party, error) {
	if err := r.put(ctx, p, "attribute_exists(PK)"); err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewNotFoundError("party not found")
		}
		return nil, commonErrors.NewInternalError("failed to update party", err)
	}
	return p, nil
}

// DeleteParty removes a party profile. Parties with ledger history cannot be deleted.
func (r *DynamoDBPartyRepository) DeleteParty(ctx context.Context, partyID string) error {
	busy, err := r.transactions.HasTransactions(ctx, partyID)
	if err != nil {
		return err
	}
	if busy {
		return commonErrors.NewConflictError("party has transactions and cannot be deleted")
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partyPK(partyID)},
			"SK": &types.AttributeValueMemberS{Value: partyProfileSK},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return commonErrors.NewNotFoundError("party not found")
		}
		return commonErrors.NewInternalError("failed to delete party", err)
	}
	return nil
}

func (r *DynamoDBPartyRepository) put(ctx context.Context, p *party.Party, condition string) error {
	item, err := attributevalue.MarshalMap(newPartyItem(p))
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

var _ party.Repository = (*DynamoDBPartyRepository)(nil)
