package models

// Match binds exactly one requester and one helper for one request.
// MatchID is derived from (requestId, helperId), so a retried accept
// lands on the same record.
type Match struct {
	MatchID     string `dynamodbav:"matchId" json:"matchId"`
	RequestID   string `dynamodbav:"requestId" json:"requestId"`
	RequesterID string `dynamodbav:"requesterId" json:"requesterId"`
	HelperID    string `dynamodbav:"helperId" json:"helperId"`
	ThreadID    string `dynamodbav:"threadId" json:"threadId"`
	Status      string `dynamodbav:"status" json:"status"` // active, completed, cancelled
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"
