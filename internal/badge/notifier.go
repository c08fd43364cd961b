package badge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPNotifier posts badge triggers to the gamification service.
type HTTPNotifier struct {
	client  *http.Client
	baseURL string
}

func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type triggerPayload struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
	Trigger     string `json:"trigger"`
	OccurredAt  string `json:"occurred_at"`
}

func (n *HTTPNotifier) Notify(ctx context.Context, trigger Trigger) error {
	payload := triggerPayload{
		VolunteerID: trigger.VolunteerID.String(),
		EventID:     trigger.EventID.String(),
		Trigger:     "event_checkin",
		OccurredAt:  trigger.CheckedInAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal badge trigger: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/triggers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build badge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post badge trigger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("badge service returned %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards triggers. Used when no badge service is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Trigger) error { return nil }
