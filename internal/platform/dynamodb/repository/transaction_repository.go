package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	ulid "github.com/oklog/ulid/v2"

	"github.com/hirosato/trade-ledger/backend/internal/common/utils"
	commonErrors "github.com/hirosato/trade-ledger/backend/internal/domain/errors"
	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/platform/dynamodb/client"
)

// defaultPageSize bounds each Query page; listings follow LastEvaluatedKey until exhausted
const defaultPageSize int32 = 200

// DynamoDBTransactionRepository implements the ledger.Repository interface
type DynamoDBTransactionRepository struct {
	client   client.Client
	table    string
	logger   *slog.Logger
	pageSize int32
}

// NewDynamoDBTransactionRepository creates a new DynamoDBTransactionRepository
func NewDynamoDBTransactionRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBTransactionRepository {
	return &DynamoDBTransactionRepository{
		client:   client,
		table:    table,
		logger:   logger,
		pageSize: defaultPageSize,
	}
}

// CreateTransaction stores a transaction under its party, keyed by date so listings come back in date order
func (r *DynamoDBTransactionRepository) CreateTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error) {
	if err := utils.ValidateISODate(tx.Date); err != nil {
		return nil, err
	}

	if tx.TransactionID == "" {
		tx.TransactionID = ulid.Make().String()
	}
	tx.CreatedAt = time.Now().UTC()

	item, err := attributevalue.MarshalMap(newTransactionItem(tx))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal transaction", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewConflictError("transaction already exists")
		}
		return nil, commonErrors.NewInternalError("failed to create transaction", err)
	}

	return tx, nil
}

// GetTransaction finds a transaction by ID through GSI1
func (r *DynamoDBTransactionRepository) GetTransaction(ctx context.Context, partyID string, transactionID string) (*ledger.Transaction, error) {
	if err := utils.ValidateULID(transactionID); err != nil {
		return nil, err
	}

	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(transactionGSI1PK(transactionID))).
		And(expression.Key("GSI1SK").Equal(expression.Value(partyPK(partyID))))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(gsi1Index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to query transaction", err)
	}
	if len(result.Items) == 0 {
		return nil, commonErrors.NewNotFoundError("transaction not found")
	}

	var item transactionItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal transaction", err)
	}

	tx := item.toTransaction()
	return &tx, nil
}

// ListTransactions returns a party's transactions in ascending date order, restricted to window
func (r *DynamoDBTransactionRepository) ListTransactions(ctx context.Context, partyID string, window ledger.DateRange) ([]ledger.Transaction, error) {
	items, err := r.queryTransactions(ctx, partyID, window, 0)
	if err != nil {
		return nil, err
	}

	transactions := make([]ledger.Transaction, 0, len(items))
	for _, item := range items {
		tx := item.toTransaction()
		if len(tx.CoercedFields()) > 0 {
			r.logger.Warn("stored transaction has unreadable amounts",
				"partyId", partyID,
				"transactionId", tx.TransactionID,
				"fields", tx.CoercedFields())
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// HasTransactions reports whether any transaction is stored for the party
func (r *DynamoDBTransactionRepository) HasTransactions(ctx context.Context, partyID string) (bool, error) {
	items, err := r.queryTransactions(ctx, partyID, ledger.DateRange{}, 1)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// DeleteTransaction removes a transaction
func (r *DynamoDBTransactionRepository) DeleteTransaction(ctx context.Context, partyID string, date string, transactionID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partyPK(partyID)},
			"SK": &types.AttributeValueMemberS{Value: transactionSK(date, transactionID)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return commonErrors.NewNotFoundError("transaction not found")
		}
		return commonErrors.NewInternalError("failed to delete transaction", err)
	}
	return nil
}

// queryTransactions pages through a party's transaction items. A positive limit stops after that many items.
func (r *DynamoDBTransactionRepository) queryTransactions(
	ctx context.Context,
	partyID string,
	window ledger.DateRange,
	limit int,
) ([]transactionItem, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(partyPK(partyID)))
	if window.IsOpen() {
		keyCondition = keyCondition.And(expression.Key("SK").BeginsWith(transactionSKTag))
	} else {
		// SK is TXN#<date>#<ulid>; the upper bound sorts after every ID on the last day
		lower := transactionSKTag + window.From
		upper := transactionSKTag + window.To + "\uFFFF"
		if window.To == "" {
			upper = transactionSKTag + "\uFFFF"
		}
		keyCondition = keyCondition.And(expression.Key("SK").Between(expression.Value(lower), expression.Value(upper)))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	pageSize := r.pageSize
	if limit > 0 && int32(limit) < pageSize {
		pageSize = int32(limit)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
		Limit:                     aws.Int32(pageSize),
	}

	var items []transactionItem
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewInternalError("failed to query transactions", err)
		}

		var page []transactionItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal transactions", err)
		}
		items = append(items, page...)

		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

var _ ledger.Repository = (*DynamoDBTransactionRepository)(nil)
