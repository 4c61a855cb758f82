package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// HasAttributes reports whether the item carries a non-empty string value
// for every named field. Used to drop malformed records from live feeds
// before delivery.
func HasAttributes(item map[string]types.AttributeValue, fields ...string) bool {
	for _, field := range fields {
		if ExtractString(item, field) == "" {
			return false
		}
	}
	return true
}
