package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"reachout_server/models"
)

// DefaultEmpathyText is used when the classify call fails. Matching goes
// ahead either way; the preview line just falls back to the generic one.
const DefaultEmpathyText = "You're not alone — matching you with nearby helpers 💜"

// FilterResult is the safety gateway's redaction verdict for one message.
type FilterResult struct {
	TextRedacted string          `json:"textRedacted"`
	Flags        map[string]bool `json:"flags"`
}

// ClassifyResult carries the urgency classification and empathy preview for
// a request's free-text message.
type ClassifyResult struct {
	Urgency     string `json:"urgency"`
	EmpathyText string `json:"empathyText"`
}

// SafetyService is the client for the external text-safety boundary. Both
// calls are fail-open: if the gateway is down, messages go through
// unredacted and requests get the default empathy line. Availability of
// the help flow wins over redaction coverage; that trade-off is asserted
// explicitly in tests.
type SafetyService struct {
	BaseURL string
	HTTP    *http.Client
}

func NewSafetyService(baseURL string) *SafetyService {
	return &SafetyService{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// FilterMessage redacts PII from an outbound message before it is persisted.
func (s *SafetyService) FilterMessage(ctx context.Context, text string) FilterResult {
	var result FilterResult
	if err := s.post(ctx, "/chat/filter", text, &result); err != nil {
		log.Printf("⚠️ Safety filter unavailable, sending original text: %v", err)
		return FilterResult{TextRedacted: text, Flags: map[string]bool{}}
	}
	if result.Flags == nil {
		result.Flags = map[string]bool{}
	}
	return result
}

// ClassifyMessage derives urgency and an empathy preview from a request's
// free-text message.
func (s *SafetyService) ClassifyMessage(ctx context.Context, text string) ClassifyResult {
	var result ClassifyResult
	if err := s.post(ctx, "/chat/classify", text, &result); err != nil {
		log.Printf("⚠️ Safety classify unavailable, using defaults: %v", err)
		return ClassifyResult{Urgency: models.UrgencyNormal, EmpathyText: DefaultEmpathyText}
	}
	if result.Urgency == "" {
		result.Urgency = models.UrgencyNormal
	}
	if result.EmpathyText == "" {
		result.EmpathyText = DefaultEmpathyText
	}
	return result
}

func (s *SafetyService) post(ctx context.Context, path, text string, out interface{}) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal safety payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build safety request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("safety gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("safety gateway returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode safety response: %w", err)
	}
	return nil
}
