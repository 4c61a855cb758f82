package services

import (
	"context"
	"strings"
	"sync"

	"reachout_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableKeys maps each table to its key attributes, in key order.
var tableKeys = map[string][]string{
	models.RequestsTable:             {"requestId"},
	models.MatchesTable:              {"matchId"},
	models.ThreadsTable:              {"threadId"},
	models.ThreadMessagesTable:       {"threadId", "messageId"},
	models.ConversationMessagesTable: {"threadId", "messageId"},
}

type updateCall struct {
	table      string
	expression string
	condition  string
}

// fakeDynamo is an in-memory DynamoAPI. It understands exactly the
// expression shapes the services emit: "SET a = :x, b = :y" updates,
// "attribute_exists(k)" / "#f <> :v" conditions joined with AND, and
// "#k = :v" key conditions.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	putErr    error
	getErr    error
	updateErr error
	queryErr  error
	scanErr   error

	updates []updateCall
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) keyString(table string, attrs map[string]types.AttributeValue) string {
	parts := make([]string, 0, 2)
	for _, field := range tableKeys[table] {
		if v, ok := attrs[field].(*types.AttributeValueMemberS); ok {
			parts = append(parts, v.Value)
		}
	}
	return strings.Join(parts, "/")
}

func (f *fakeDynamo) PutItem(_ context.Context, tableName string, item interface{}) error {
	if f.putErr != nil {
		return f.putErr
	}
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[tableName] == nil {
		f.tables[tableName] = make(map[string]map[string]types.AttributeValue)
	}
	f.tables[tableName][f.keyString(tableName, marshaled)] = marshaled
	return nil
}

func (f *fakeDynamo) GetItem(_ context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.tables[tableName][f.keyString(tableName, key)]
	if !ok {
		return nil, ErrItemNotFound
	}
	return copyItem(item), nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, tableName, updateExpression string, key map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	return f.UpdateItemWithCondition(ctx, tableName, updateExpression, "", key, values, names)
}

func (f *fakeDynamo) UpdateItemWithCondition(_ context.Context, tableName, updateExpression, conditionExpression string, key map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, updateCall{table: tableName, expression: updateExpression, condition: conditionExpression})

	if f.tables[tableName] == nil {
		f.tables[tableName] = make(map[string]map[string]types.AttributeValue)
	}
	ks := f.keyString(tableName, key)
	item, ok := f.tables[tableName][ks]

	// Conditions are checked before the upsert, like the real thing.
	if conditionExpression != "" && !evalCondition(conditionExpression, item, values, names) {
		return nil, ErrConditionFailed
	}
	if !ok {
		item = copyItem(key)
		f.tables[tableName][ks] = item
	}

	applySet(updateExpression, item, values, names)
	return copyItem(item), nil
}

func (f *fakeDynamo) QueryItems(_ context.Context, tableName, keyConditionExpression string, values map[string]types.AttributeValue, names map[string]string, _ int32) ([]map[string]types.AttributeValue, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	field, value := parseEquality(keyConditionExpression, values, names)

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, item := range f.tables[tableName] {
		if v, ok := item[field].(*types.AttributeValueMemberS); ok && v.Value == value {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

func (f *fakeDynamo) ScanItems(_ context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, item := range f.tables[tableName] {
		out = append(out, copyItem(item))
	}
	return out, nil
}

func (f *fakeDynamo) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

// applySet applies a "SET a = :x, b = :y" expression.
func applySet(expression string, item map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) {
	expression = strings.TrimPrefix(strings.TrimSpace(expression), "SET ")
	for _, clause := range strings.Split(expression, ",") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			continue
		}
		field := resolveName(strings.TrimSpace(parts[0]), names)
		placeholder := strings.TrimSpace(parts[1])
		if value, ok := values[placeholder]; ok {
			item[field] = value
		}
	}
}

// evalCondition evaluates conditions built from "attribute_exists(k)" and
// "#f <> :v" clauses joined with AND.
func evalCondition(expression string, item map[string]types.AttributeValue, values map[string]types.AttributeValue, names map[string]string) bool {
	for _, clause := range strings.Split(expression, " AND ") {
		clause = strings.TrimSpace(clause)
		if strings.HasPrefix(clause, "attribute_exists(") && strings.HasSuffix(clause, ")") {
			field := resolveName(strings.TrimSpace(clause[len("attribute_exists("):len(clause)-1]), names)
			if _, ok := item[field]; !ok {
				return false
			}
			continue
		}

		parts := strings.SplitN(clause, "<>", 2)
		if len(parts) != 2 {
			continue
		}
		field := resolveName(strings.TrimSpace(parts[0]), names)
		placeholder := strings.TrimSpace(parts[1])

		current, hasCurrent := item[field].(*types.AttributeValueMemberS)
		forbidden, ok := values[placeholder].(*types.AttributeValueMemberS)
		if !ok || !hasCurrent {
			continue
		}
		if current.Value == forbidden.Value {
			return false
		}
	}
	return true
}

// parseEquality extracts field and value from a "#k = :v" key condition.
func parseEquality(expression string, values map[string]types.AttributeValue, names map[string]string) (string, string) {
	parts := strings.SplitN(expression, "=", 2)
	if len(parts) != 2 {
		return "", ""
	}
	field := resolveName(strings.TrimSpace(parts[0]), names)
	placeholder := strings.TrimSpace(parts[1])
	if v, ok := values[placeholder].(*types.AttributeValueMemberS); ok {
		return field, v.Value
	}
	return field, ""
}
