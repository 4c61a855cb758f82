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
)

// MatchID derives the deterministic id shared by a match and its thread.
// Keying by (requestId, helperId) is what makes accept idempotent: a
// duplicate tap or retried call lands on the same record, while two
// different helpers produce two independent matches.
func MatchID(requestID, helperID string) string {
	return requestID + "_" + helperID
}

// ActiveMatch is the payload delivered to a requester when a helper accepts.
type ActiveMatch struct {
	ThreadID  string `json:"threadId"`
	RequestID string `json:"requestId"`
	HelperID  string `json:"helperId"`
}

// MatchService turns an accept action into a durable match and conversation.
type MatchService struct {
	Dynamo DynamoAPI
	Events *ChangeNotifier
}

// Accept creates the match and thread for (requestID, helperID) and marks
// the request matched, returning the thread id. Calling it again with the
// same pair returns the existing thread unchanged.
//
// Two helpers racing on the same request both succeed: each gets its own
// match and thread. The requester ends up in the first thread their
// active-match subscription delivers.
func (s *MatchService) Accept(ctx context.Context, requestID, helperID, requesterID string) (string, error) {
	if requestID == "" || helperID == "" || requesterID == "" {
		return "", validationErrorf("accept requires requestId, helperId, and requesterId")
	}

	matchID := MatchID(requestID, helperID)

	existing, err := s.GetMatch(ctx, matchID)
	if err == nil && existing.ThreadID != "" {
		log.Printf("🔁 Accept for match %s is a no-op, thread %s already exists", matchID, existing.ThreadID)
		return existing.ThreadID, nil
	}
	var notFound *NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return "", err
	}

	// The request must exist and still be acceptable before the thread and
	// match records are written, so a bad accept leaves no orphan pair.
	item, err := s.Dynamo.GetItem(ctx, models.RequestsTable, requestKey(requestID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return "", &NotFoundError{Kind: "request", ID: requestID}
		}
		return "", &TransientError{Op: "request get", Err: err}
	}
	var request models.Request
	if err := attributevalue.UnmarshalMap(item, &request); err != nil {
		return "", fmt.Errorf("failed to parse request %s: %w", requestID, err)
	}
	if request.Status == models.RequestStatusCompleted || request.Status == models.RequestStatusCancelled {
		return "", validationErrorf("request %s is already in a terminal state", requestID)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	thread := models.Thread{
		ThreadID:      matchID,
		Participants:  []string{requesterID, helperID},
		Kind:          models.ThreadKindHuman,
		RequestID:     requestID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := s.Dynamo.PutItem(ctx, models.ThreadsTable, thread); err != nil {
		return "", &TransientError{Op: "thread create", Err: err}
	}

	match := models.Match{
		MatchID:     matchID,
		RequestID:   requestID,
		RequesterID: requesterID,
		HelperID:    helperID,
		ThreadID:    matchID,
		Status:      models.MatchStatusActive,
		CreatedAt:   now,
	}
	if err := s.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return "", &TransientError{Op: "match create", Err: err}
	}

	// Last writer wins on the request's scalar fields when helpers race;
	// the match records themselves never collide. The condition keeps the
	// update from upserting a ghost request or resurrecting a terminal one
	// that changed under us after the check above (matched stays allowed,
	// so a second helper still lands).
	_, err = s.Dynamo.UpdateItemWithCondition(ctx,
		models.RequestsTable,
		"SET #status = :matched, acceptorId = :helper",
		"attribute_exists(requestId) AND #status <> :completed AND #status <> :cancelled",
		requestKey(requestID),
		map[string]types.AttributeValue{
			":matched":   &types.AttributeValueMemberS{Value: models.RequestStatusMatched},
			":helper":    &types.AttributeValueMemberS{Value: helperID},
			":completed": &types.AttributeValueMemberS{Value: models.RequestStatusCompleted},
			":cancelled": &types.AttributeValueMemberS{Value: models.RequestStatusCancelled},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return "", validationErrorf("request %s is already in a terminal state", requestID)
		}
		return "", &TransientError{Op: "request match update", Err: err}
	}

	log.Printf("🤝 Match %s created: helper %s accepted request %s", matchID, helperID, requestID)
	s.Events.Notify(TopicMatches)
	s.Events.Notify(TopicRequests)
	return matchID, nil
}

// GetMatch retrieves a match by its deterministic id.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(matchID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return models.Match{}, &NotFoundError{Kind: "match", ID: matchID}
		}
		return models.Match{}, &TransientError{Op: "match get", Err: err}
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return models.Match{}, fmt.Errorf("failed to parse match %s: %w", matchID, err)
	}
	return match, nil
}

// ActiveMatchFor scans matches newest-first and returns the first active
// one for the requester, or nil when there is none.
func (s *MatchService) ActiveMatchFor(ctx context.Context, requesterID string) (*ActiveMatch, error) {
	items, err := s.Dynamo.ScanItems(ctx, models.MatchesTable)
	if err != nil {
		return nil, &TransientError{Op: "match scan", Err: err}
	}

	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, fmt.Errorf("failed to parse matches: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt > matches[j].CreatedAt
	})

	for _, match := range matches {
		if match.RequesterID == requesterID && match.Status == models.MatchStatusActive && match.ThreadID != "" {
			return &ActiveMatch{
				ThreadID:  match.ThreadID,
				RequestID: match.RequestID,
				HelperID:  match.HelperID,
			}, nil
		}
	}
	return nil, nil
}

// SubscribeActiveMatch watches the match feed and invokes cb with the most
// recent active match for the requester (nil when there is none). Used to
// auto-route a requester into the first thread that becomes available.
func (s *MatchService) SubscribeActiveMatch(ctx context.Context, requesterID string, cb func(*ActiveMatch)) {
	ch, cancel := s.Events.Subscribe(TopicMatches)

	deliver := func() {
		match, err := s.ActiveMatchFor(ctx, requesterID)
		if err != nil {
			log.Printf("⚠️ Active-match feed degraded for %s: %v", requesterID, err)
			cb(nil)
			return
		}
		cb(match)
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

func matchKey(matchID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
}
