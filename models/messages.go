package models

type Message struct {
	ThreadID  string `dynamodbav:"threadId" json:"threadId"`
	MessageID string `dynamodbav:"messageId" json:"messageId"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Text      string `dynamodbav:"text" json:"text"` // already redacted by the safety gateway
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// ThreadMessagesTable is the DynamoDB table name for thread messages
const ThreadMessagesTable = "ThreadMessages"

// ConversationMessagesTable is the legacy message table from the prior
// naming scheme, consulted only when the primary lookup yields nothing.
const ConversationMessagesTable = "ConversationMessages"
