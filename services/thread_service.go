package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"reachout_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// messageStore is one storage location for a thread's messages. Two
// implementations exist: the primary ThreadMessages table and the legacy
// ConversationMessages table from the prior naming scheme. Callers never
// see which one answered.
type messageStore interface {
	Append(ctx context.Context, msg models.Message) error
	List(ctx context.Context, threadID string) ([]models.Message, error)
}

// dynamoMessageStore reads and writes one message table, partition-keyed by
// threadId with messageId as the sort key.
type dynamoMessageStore struct {
	dynamo DynamoAPI
	table  string
}

func (m *dynamoMessageStore) Append(ctx context.Context, msg models.Message) error {
	return m.dynamo.PutItem(ctx, m.table, msg)
}

func (m *dynamoMessageStore) List(ctx context.Context, threadID string) ([]models.Message, error) {
	keyCondition := "#threadId = :threadId"
	expressionValues := map[string]types.AttributeValue{
		":threadId": &types.AttributeValueMemberS{Value: threadID},
	}
	expressionNames := map[string]string{
		"#threadId": "threadId",
	}

	items, err := m.dynamo.QueryItems(ctx, m.table, keyCondition, expressionValues, expressionNames, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from '%s': %w", m.table, err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages from '%s': %w", m.table, err)
	}
	return messages, nil
}

// fallbackMessageStore chains a primary store over a legacy one. Writes
// always go to the primary; reads consult the legacy store only when the
// primary has nothing for the thread.
type fallbackMessageStore struct {
	primary messageStore
	legacy  messageStore
}

func (f *fallbackMessageStore) Append(ctx context.Context, msg models.Message) error {
	return f.primary.Append(ctx, msg)
}

func (f *fallbackMessageStore) List(ctx context.Context, threadID string) ([]models.Message, error) {
	messages, err := f.primary.List(ctx, threadID)
	if err == nil && len(messages) > 0 {
		return messages, nil
	}
	if err != nil {
		log.Printf("⚠️ Primary message lookup failed for thread %s, trying legacy: %v", threadID, err)
	}

	legacyMessages, legacyErr := f.legacy.List(ctx, threadID)
	if legacyErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, legacyErr
	}
	if len(legacyMessages) > 0 {
		return legacyMessages, nil
	}
	return messages, err
}

// ThreadService governs the append-only message stream of each conversation.
type ThreadService struct {
	Dynamo   DynamoAPI
	Events   *ChangeNotifier
	messages messageStore
}

func NewThreadService(dynamo DynamoAPI, events *ChangeNotifier) *ThreadService {
	return &ThreadService{
		Dynamo: dynamo,
		Events: events,
		messages: &fallbackMessageStore{
			primary: &dynamoMessageStore{dynamo: dynamo, table: models.ThreadMessagesTable},
			legacy:  &dynamoMessageStore{dynamo: dynamo, table: models.ConversationMessagesTable},
		},
	}
}

// GetThread retrieves a thread by id.
func (s *ThreadService) GetThread(ctx context.Context, threadID string) (models.Thread, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ThreadsTable, threadKey(threadID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return models.Thread{}, &NotFoundError{Kind: "thread", ID: threadID}
		}
		return models.Thread{}, &TransientError{Op: "thread get", Err: err}
	}

	var thread models.Thread
	if err := attributevalue.UnmarshalMap(item, &thread); err != nil {
		return models.Thread{}, fmt.Errorf("failed to parse thread %s: %w", threadID, err)
	}
	return thread, nil
}

// Send appends a message (text already redacted by the safety gateway) with
// a server timestamp and bumps the thread's lastMessageAt. The persisted
// message id is returned synchronously so safety flags can be correlated
// against it rather than against text content.
func (s *ThreadService) Send(ctx context.Context, threadID, senderID, redactedText string) (string, error) {
	if threadID == "" || senderID == "" {
		return "", validationErrorf("send requires threadId and senderId")
	}

	message := models.Message{
		ThreadID:  threadID,
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Text:      redactedText,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.messages.Append(ctx, message); err != nil {
		return "", &TransientError{Op: "message append", Err: err}
	}

	_, err := s.Dynamo.UpdateItem(ctx,
		models.ThreadsTable,
		"SET lastMessageAt = :now",
		threadKey(threadID),
		map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: message.CreatedAt},
		},
		nil,
	)
	if err != nil {
		log.Printf("⚠️ Failed to bump lastMessageAt on thread %s: %v", threadID, err)
	}

	s.Events.Notify(ThreadTopic(threadID))
	return message.MessageID, nil
}

// Messages returns a thread's messages ascending by creation time, falling
// back to the legacy storage location when the primary has none.
func (s *ThreadService) Messages(ctx context.Context, threadID string) ([]models.Message, error) {
	messages, err := s.messages.List(ctx, threadID)
	if err != nil {
		return nil, &TransientError{Op: "message list", Err: err}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt < messages[j].CreatedAt
	})
	return messages, nil
}

// Subscribe delivers the thread's message list, oldest first, on every
// change until ctx is done. Transient failures degrade to an empty
// delivery.
func (s *ThreadService) Subscribe(ctx context.Context, threadID string, cb func([]models.Message)) {
	ch, cancel := s.Events.Subscribe(ThreadTopic(threadID))

	deliver := func() {
		messages, err := s.Messages(ctx, threadID)
		if err != nil {
			log.Printf("⚠️ Message feed degraded for thread %s: %v", threadID, err)
			cb([]models.Message{})
			return
		}
		cb(messages)
	}

	go func() {
		defer cancel()
		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				deliver()
			}
		}
	}()
}

func threadKey(threadID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"threadId": &types.AttributeValueMemberS{Value: threadID},
	}
}
