package models

// Thread is the conversation container for one match. ThreadID equals the
// MatchID for human threads, keeping the relation 1:1 without an index.
type Thread struct {
	ThreadID      string   `dynamodbav:"threadId" json:"threadId"`
	Participants  []string `dynamodbav:"participants" json:"participants"`
	Kind          string   `dynamodbav:"kind" json:"kind"` // "human" or "automated"
	RequestID     string   `dynamodbav:"requestId" json:"requestId"`
	CreatedAt     string   `dynamodbav:"createdAt" json:"createdAt"`
	LastMessageAt string   `dynamodbav:"lastMessageAt" json:"lastMessageAt"`
}

// ThreadsTable is the DynamoDB table name for threads
const ThreadsTable = "Threads"
