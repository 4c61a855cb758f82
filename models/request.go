package models

type Request struct {
	RequestID      string  `dynamodbav:"requestId" json:"requestId"`
	OwnerID        string  `dynamodbav:"ownerId" json:"ownerId"`
	Latitude       float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude      float64 `dynamodbav:"longitude" json:"longitude"`
	Address        string  `dynamodbav:"address,omitempty" json:"address,omitempty"`
	Status         string  `dynamodbav:"status" json:"status"`
	Urgency        string  `dynamodbav:"urgency,omitempty" json:"urgency,omitempty"`
	EmpathyMessage string  `dynamodbav:"empathyMessage,omitempty" json:"empathyMessage,omitempty"`
	AcceptorID     string  `dynamodbav:"acceptorId,omitempty" json:"acceptorId,omitempty"`
	CreatedAt      string  `dynamodbav:"createdAt" json:"createdAt"`
}

// RequestsTable is the DynamoDB table name for help requests
const RequestsTable = "Requests"
