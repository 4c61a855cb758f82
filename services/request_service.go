package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"reachout_server/models"
	"reachout_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// MessageClassifier is the slice of the safety gateway the request path
// uses for urgency/empathy enrichment.
type MessageClassifier interface {
	ClassifyMessage(ctx context.Context, text string) ClassifyResult
}

// RequestService owns the help-request records and their state machine.
type RequestService struct {
	Dynamo     DynamoAPI
	Classifier MessageClassifier
	Events     *ChangeNotifier
}

// CreateRequestInput carries the requester-supplied fields. Coordinates are
// pointers so a missing coordinate is distinguishable from zero.
type CreateRequestInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
	OwnerID   string   `json:"ownerId"`
	Urgency   string   `json:"urgency,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Create validates and persists a new request with status=pending and a
// server-assigned creation time, returning the new id. When the caller did
// not supply an urgency, the free-text message is classified through the
// safety gateway (fail-open to normal).
func (s *RequestService) Create(ctx context.Context, input CreateRequestInput) (string, error) {
	if input.Latitude == nil || input.Longitude == nil {
		return "", validationErrorf("request requires coordinates")
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return "", validationErrorf("request requires a non-empty ownerId")
	}

	urgency := input.Urgency
	empathy := ""
	if urgency == "" {
		urgency = models.UrgencyNormal
		empathy = DefaultEmpathyText
		if s.Classifier != nil {
			classified := s.Classifier.ClassifyMessage(ctx, input.Message)
			urgency = classified.Urgency
			empathy = classified.EmpathyText
		}
	}

	request := models.Request{
		RequestID:      uuid.NewString(),
		OwnerID:        input.OwnerID,
		Latitude:       *input.Latitude,
		Longitude:      *input.Longitude,
		Address:        input.Address,
		Status:         models.RequestStatusPending,
		Urgency:        urgency,
		EmpathyMessage: empathy,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, models.RequestsTable, request); err != nil {
		return "", &TransientError{Op: "request create", Err: err}
	}

	log.Printf("📍 Request %s created by %s (urgency=%s)", request.RequestID, request.OwnerID, request.Urgency)
	s.notify()
	return request.RequestID, nil
}

// Get retrieves a single request by id.
func (s *RequestService) Get(ctx context.Context, requestID string) (models.Request, error) {
	item, err := s.Dynamo.GetItem(ctx, models.RequestsTable, requestKey(requestID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return models.Request{}, &NotFoundError{Kind: "request", ID: requestID}
		}
		return models.Request{}, &TransientError{Op: "request get", Err: err}
	}

	var request models.Request
	if err := attributevalue.UnmarshalMap(item, &request); err != nil {
		return models.Request{}, fmt.Errorf("failed to parse request %s: %w", requestID, err)
	}
	return request, nil
}

// List returns all requests newest-first. Malformed records (missing id,
// owner, or status) are filtered out before delivery so dependents never
// see a record they cannot act on.
func (s *RequestService) List(ctx context.Context) ([]models.Request, error) {
	items, err := s.Dynamo.ScanItems(ctx, models.RequestsTable)
	if err != nil {
		return nil, &TransientError{Op: "request list", Err: err}
	}

	var wellFormed []map[string]types.AttributeValue
	for _, item := range items {
		if !utils.HasAttributes(item, "requestId", "ownerId", "status") {
			continue
		}
		wellFormed = append(wellFormed, item)
	}

	var requests []models.Request
	if err := attributevalue.UnmarshalListOfMaps(wellFormed, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt > requests[j].CreatedAt
	})
	return requests, nil
}

// Subscribe delivers a live, creation-time-descending feed until ctx is
// done. On a transient backend error it delivers an empty slice instead of
// failing, so dependents keep a renderable view.
func (s *RequestService) Subscribe(ctx context.Context, cb func([]models.Request)) {
	ch, cancel := s.Events.Subscribe(TopicRequests)

	deliver := func() {
		requests, err := s.List(ctx)
		if err != nil {
			log.Printf("⚠️ Request feed degraded: %v", err)
			cb([]models.Request{})
			return
		}
		cb(requests)
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

// Cancel moves a request to cancelled. The requester may cancel their own
// request; the acceptor may cancel the help offer. Anyone else is rejected
// with no state change. An existing match is cascaded to cancelled.
func (s *RequestService) Cancel(ctx context.Context, requestID, actorID string, isRequester bool) error {
	if strings.TrimSpace(actorID) == "" {
		return validationErrorf("cancel requires a non-empty actorId")
	}

	request, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if isRequester && request.OwnerID != actorID {
		return authorizationErrorf("actor %s is not the owner of request %s", actorID, requestID)
	}
	if !isRequester && request.AcceptorID != actorID {
		return authorizationErrorf("actor %s is not the acceptor of request %s", actorID, requestID)
	}

	if err := s.setRequestStatus(ctx, requestID, models.RequestStatusCancelled); err != nil {
		return err
	}

	helperID := request.AcceptorID
	if !isRequester {
		helperID = actorID
	}
	s.cascadeMatchStatus(ctx, requestID, helperID, models.MatchStatusCancelled)

	log.Printf("🚫 Request %s cancelled by %s", requestID, actorID)
	s.notify()
	return nil
}

// Complete marks a request as completed (helper dropped off). Only the
// acceptor may complete; the match is cascaded to completed.
func (s *RequestService) Complete(ctx context.Context, requestID, helperID string) error {
	if strings.TrimSpace(helperID) == "" {
		return validationErrorf("complete requires a non-empty helperId")
	}

	request, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if request.AcceptorID != helperID {
		return authorizationErrorf("only the accepting helper can complete request %s", requestID)
	}

	if err := s.setRequestStatus(ctx, requestID, models.RequestStatusCompleted); err != nil {
		return err
	}
	s.cascadeMatchStatus(ctx, requestID, helperID, models.MatchStatusCompleted)

	log.Printf("✅ Request %s completed by %s", requestID, helperID)
	s.notify()
	return nil
}

// setRequestStatus writes the new status with a condition that the request
// is not already in a terminal state. Status only moves forward; there is
// no resurrection from cancelled or completed.
func (s *RequestService) setRequestStatus(ctx context.Context, requestID, status string) error {
	_, err := s.Dynamo.UpdateItemWithCondition(ctx,
		models.RequestsTable,
		"SET #status = :status",
		"#status <> :completed AND #status <> :cancelled",
		requestKey(requestID),
		map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: status},
			":completed": &types.AttributeValueMemberS{Value: models.RequestStatusCompleted},
			":cancelled": &types.AttributeValueMemberS{Value: models.RequestStatusCancelled},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return validationErrorf("request %s is already in a terminal state", requestID)
		}
		return &TransientError{Op: "request status update", Err: err}
	}
	return nil
}

// cascadeMatchStatus propagates a terminal request transition to the
// related match, if one exists. A missing match is normal (nobody accepted
// yet); a failed cascade is logged but does not undo the request update.
func (s *RequestService) cascadeMatchStatus(ctx context.Context, requestID, helperID, status string) {
	if helperID == "" {
		return
	}
	matchID := MatchID(requestID, helperID)

	if _, err := s.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(matchID)); err != nil {
		if !errors.Is(err, ErrItemNotFound) {
			log.Printf("⚠️ Could not look up match %s for cascade: %v", matchID, err)
		}
		return
	}

	_, err := s.Dynamo.UpdateItem(ctx,
		models.MatchesTable,
		"SET #status = :status",
		matchKey(matchID),
		map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		log.Printf("⚠️ Failed to cascade status %s to match %s: %v", status, matchID, err)
		return
	}
	s.Events.Notify(TopicMatches)
}

func (s *RequestService) notify() {
	s.Events.Notify(TopicRequests)
}

func requestKey(requestID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"requestId": &types.AttributeValueMemberS{Value: requestID},
	}
}
