// Package testutil provides an in-memory stand-in for the DynamoDB client,
// covering the expression subset this server uses: conditional puts,
// key-condition equality and range comparisons, equality filters and SET
// updates.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type tableSchema struct {
	keys []string // partition key, optional sort key
}

// FakeDynamo is an in-memory DynamoAPI implementation for tests.
type FakeDynamo struct {
	mu      sync.Mutex
	schemas map[string]tableSchema
	items   map[string]map[string]map[string]types.AttributeValue // table -> key -> item

	// FailPuts, when set, makes every PutItem fail with this error.
	FailPuts error
}

// NewFakeDynamo returns a fake pre-registered with this server's tables.
func NewFakeDynamo() *FakeDynamo {
	f := &FakeDynamo{
		schemas: map[string]tableSchema{
			"Interactions":  {keys: []string{"actorId", "targetId"}},
			"Conversations": {keys: []string{"conversationId"}},
			"Messages":      {keys: []string{"conversationId", "sortKey"}},
			"Teams":         {keys: []string{"teamId"}},
			"TeamInvites":   {keys: []string{"teamId", "userId"}},
			"TeamCooldowns": {keys: []string{"teamId", "userId"}},
			"TeamMessages":  {keys: []string{"teamId", "sortKey"}},
			"UserProfiles":  {keys: []string{"userId"}},
		},
		items: make(map[string]map[string]map[string]types.AttributeValue),
	}
	for table := range f.schemas {
		f.items[table] = make(map[string]map[string]types.AttributeValue)
	}
	return f
}

func (f *FakeDynamo) keyFor(table string, item map[string]types.AttributeValue) (string, error) {
	schema, ok := f.schemas[table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", table)
	}
	parts := make([]string, 0, len(schema.keys))
	for _, keyAttr := range schema.keys {
		attr, ok := item[keyAttr].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("table %q: missing key attribute %q", table, keyAttr)
		}
		parts = append(parts, attr.Value)
	}
	return strings.Join(parts, "|"), nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// PutItem stores an item, honoring attribute_not_exists conditions.
func (f *FakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailPuts != nil {
		return nil, f.FailPuts
	}

	table := *params.TableName
	key, err := f.keyFor(table, params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil {
		if !strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
			return nil, fmt.Errorf("unsupported condition %q", *params.ConditionExpression)
		}
		if _, exists := f.items[table][key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
		}
	}

	f.items[table][key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the stored item, or a nil Item when absent.
func (f *FakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := *params.TableName
	key, err := f.keyFor(table, params.Key)
	if err != nil {
		return nil, err
	}

	item, ok := f.items[table][key]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// DeleteItem removes an item; deleting a missing item is a no-op.
func (f *FakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := *params.TableName
	key, err := f.keyFor(table, params.Key)
	if err != nil {
		return nil, err
	}
	delete(f.items[table], key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query filters the table by the key condition and optional filter
// expression, sorted by the table's sort key.
func (f *FakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := *params.TableName
	schema, ok := f.schemas[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	keyClauses, err := parseClauses(*params.KeyConditionExpression, params.ExpressionAttributeNames)
	if err != nil {
		return nil, err
	}
	var filterClauses []clause
	if params.FilterExpression != nil {
		filterClauses, err = parseClauses(*params.FilterExpression, params.ExpressionAttributeNames)
		if err != nil {
			return nil, err
		}
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items[table] {
		if matchesAll(item, keyClauses, params.ExpressionAttributeValues) &&
			matchesAll(item, filterClauses, params.ExpressionAttributeValues) {
			matched = append(matched, copyItem(item))
		}
	}

	if len(schema.keys) > 1 {
		sortAttr := schema.keys[1]
		descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
		sort.SliceStable(matched, func(i, j int) bool {
			a := stringAttr(matched[i], sortAttr)
			b := stringAttr(matched[j], sortAttr)
			if descending {
				return a > b
			}
			return a < b
		})
	}

	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: matched}, nil
}

// UpdateItem applies SET expressions, creating the item if absent.
func (f *FakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := *params.TableName
	key, err := f.keyFor(table, params.Key)
	if err != nil {
		return nil, err
	}

	item, ok := f.items[table][key]
	if !ok {
		item = copyItem(params.Key)
		f.items[table][key] = item
	}

	expr := strings.TrimSpace(*params.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("unsupported update expression %q", expr)
	}
	for _, assignment := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		parts := strings.Split(strings.TrimSpace(assignment), " = ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported assignment %q", assignment)
		}
		attr := resolveName(parts[0], params.ExpressionAttributeNames)
		value, ok := params.ExpressionAttributeValues[parts[1]]
		if !ok {
			return nil, fmt.Errorf("missing expression value %q", parts[1])
		}
		item[attr] = value
	}

	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

// Scan returns every item; "<>" filter clauses are honored.
func (f *FakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := *params.TableName
	var clauses []clause
	if params.FilterExpression != nil {
		parsed, err := parseClauses(*params.FilterExpression, params.ExpressionAttributeNames)
		if err != nil {
			return nil, err
		}
		clauses = parsed
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items[table] {
		if matchesAll(item, clauses, params.ExpressionAttributeValues) {
			matched = append(matched, copyItem(item))
		}
	}
	return &dynamodb.ScanOutput{Items: matched}, nil
}

type clause struct {
	attr   string
	op     string
	valRef string
}

func parseClauses(expr string, names map[string]string) ([]clause, error) {
	var clauses []clause
	for _, raw := range strings.Split(expr, " AND ") {
		fields := strings.Fields(strings.TrimSpace(raw))
		if len(fields) != 3 {
			return nil, fmt.Errorf("unsupported expression clause %q", raw)
		}
		op := fields[1]
		if op != "=" && op != "<" && op != ">" && op != "<>" {
			return nil, fmt.Errorf("unsupported operator %q", op)
		}
		clauses = append(clauses, clause{
			attr:   resolveName(fields[0], names),
			op:     op,
			valRef: fields[2],
		})
	}
	return clauses, nil
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

func matchesAll(item map[string]types.AttributeValue, clauses []clause, values map[string]types.AttributeValue) bool {
	for _, c := range clauses {
		want, ok := values[c.valRef]
		if !ok {
			return false
		}
		have, ok := item[c.attr]
		if !ok {
			return false
		}
		switch c.op {
		case "=":
			if !attrEqual(have, want) {
				return false
			}
		case "<>":
			if attrEqual(have, want) {
				return false
			}
		case "<":
			if !(stringValue(have) < stringValue(want)) {
				return false
			}
		case ">":
			if !(stringValue(have) > stringValue(want)) {
				return false
			}
		}
	}
	return true
}

func attrEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}

func stringValue(attr types.AttributeValue) string {
	if s, ok := attr.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if attr, ok := item[name]; ok {
		return stringValue(attr)
	}
	return ""
}

func strPtr(s string) *string { return &s }
