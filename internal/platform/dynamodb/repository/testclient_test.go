package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TestClient is an in-memory implementation of the DynamoDB client interface for testing.
// Query understands the key conditions built by the expression package: =, begins_with and BETWEEN.
type TestClient struct {
	items   map[string]map[string]types.AttributeValue
	queries int
}

// NewTestClient creates a new test client with an empty items map
func NewTestClient() *TestClient {
	return &TestClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	return stringAttr(item, "PK") + "|" + stringAttr(item, "SK")
}

func (c *TestClient) checkCondition(condition *string, key string) error {
	if condition == nil {
		return nil
	}
	_, exists := c.items[key]
	switch *condition {
	case "attribute_not_exists(PK)":
		if exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("Item already exists")}
		}
	case "attribute_exists(PK)":
		if !exists {
			return &types.ConditionalCheckFailedException{Message: aws.String("Item does not exist")}
		}
	}
	return nil
}

// GetItem retrieves an item from the in-memory store
func (c *TestClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if item, exists := c.items[itemKey(params.Key)]; exists {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{}}, nil
}

// PutItem adds or replaces an item in the in-memory store
func (c *TestClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := itemKey(params.Item)
	if err := c.checkCondition(params.ConditionExpression, key); err != nil {
		return nil, err
	}
	c.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem removes an item from the in-memory store
func (c *TestClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	key := itemKey(params.Key)
	if err := c.checkCondition(params.ConditionExpression, key); err != nil {
		return nil, err
	}
	delete(c.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

var (
	equalPattern      = regexp.MustCompile(`(#\w+)\s*=\s*(:\w+)`)
	beginsWithPattern = regexp.MustCompile(`begins_with\s*\(\s*(#\w+)\s*,\s*(:\w+)\s*\)`)
	betweenPattern    = regexp.MustCompile(`(#\w+)\s+BETWEEN\s+(:\w+)\s+AND\s+(:\w+)`)
)

type keyPredicate func(item map[string]types.AttributeValue) bool

func parseKeyCondition(params *dynamodb.QueryInput) ([]keyPredicate, error) {
	cond := aws.ToString(params.KeyConditionExpression)
	name := func(alias string) string { return params.ExpressionAttributeNames[alias] }
	value := func(alias string) string {
		if s, ok := params.ExpressionAttributeValues[alias].(*types.AttributeValueMemberS); ok {
			return s.Value
		}
		return ""
	}

	var predicates []keyPredicate
	for _, m := range equalPattern.FindAllStringSubmatch(cond, -1) {
		attr, want := name(m[1]), value(m[2])
		predicates = append(predicates, func(item map[string]types.AttributeValue) bool {
			return stringAttr(item, attr) == want
		})
	}
	for _, m := range beginsWithPattern.FindAllStringSubmatch(cond, -1) {
		attr, prefix := name(m[1]), value(m[2])
		predicates = append(predicates, func(item map[string]types.AttributeValue) bool {
			return strings.HasPrefix(stringAttr(item, attr), prefix)
		})
	}
	for _, m := range betweenPattern.FindAllStringSubmatch(cond, -1) {
		attr, lo, hi := name(m[1]), value(m[2]), value(m[3])
		predicates = append(predicates, func(item map[string]types.AttributeValue) bool {
			v := stringAttr(item, attr)
			return v >= lo && v <= hi
		})
	}
	if len(predicates) == 0 {
		return nil, fmt.Errorf("unsupported key condition %q", cond)
	}
	return predicates, nil
}

// Query evaluates the key condition over the store and pages by Limit and ExclusiveStartKey
func (c *TestClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.queries++
	predicates, err := parseKeyCondition(params)
	if err != nil {
		return nil, err
	}

	sortKey := "SK"
	if aws.ToString(params.IndexName) == "GSI1" {
		sortKey = "GSI1SK"
	}

	var matched []map[string]types.AttributeValue
	for _, item := range c.items {
		ok := true
		for _, p := range predicates {
			if !p(item) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := stringAttr(matched[i], sortKey), stringAttr(matched[j], sortKey)
		if a != b {
			return a < b
		}
		return itemKey(matched[i]) < itemKey(matched[j])
	})
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if len(params.ExclusiveStartKey) > 0 {
		start := itemKey(params.ExclusiveStartKey)
		for i, item := range matched {
			if itemKey(item) == start {
				matched = matched[i+1:]
				break
			}
		}
	}

	out := &dynamodb.QueryOutput{}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
		last := matched[len(matched)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": last["PK"],
			"SK": last["SK"],
		}
	}
	out.Items = matched
	out.Count = int32(len(matched))
	return out, nil
}
