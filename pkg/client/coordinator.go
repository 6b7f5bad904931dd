package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Request statuses and decision outcomes.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"

	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// defaultPollInterval is used when the server config cannot be fetched.
const defaultPollInterval = 30 * time.Second

type DonationRequest struct {
	ID                string     `json:"id"`
	OrganizationID    string     `json:"organization_id"`
	DonationID        string     `json:"donation_id"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
	DecidedBy         string     `json:"decided_by,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	NotificationShown bool       `json:"notification_shown"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PendingRequest is the admin review view of an undecided request.
type PendingRequest struct {
	Request          DonationRequest `json:"request"`
	Donation         *Donation       `json:"donation,omitempty"`
	OrganizationName string          `json:"organization_name"`
}

// Notifier receives approval notifications discovered while polling.
type Notifier interface {
	NotifyApproved(req DonationRequest)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(req DonationRequest)

func (f NotifierFunc) NotifyApproved(req DonationRequest) { f(req) }

// SubmitRequest asks to collect another organization's donation. The
// confirmation prompt runs before the reservation is attempted.
func (c *Client) SubmitRequest(ctx context.Context, donationID string) (*DonationRequest, error) {
	if !c.confirm.Confirm(fmt.Sprintf("Request donation %s?", donationID)) {
		return nil, ErrConfirmationDeclined
	}
	body := map[string]string{"donation_id": donationID}
	var req DonationRequest
	if err := c.do(ctx, http.MethodPost, "/api/donation-requests/create", authSession, body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// OwnRequests returns the caller's requests, newest first.
func (c *Client) OwnRequests(ctx context.Context) ([]DonationRequest, error) {
	var out []DonationRequest
	if err := c.do(ctx, http.MethodGet, "/api/donation-requests", authSession, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotified records that the approval for the given request was shown.
// The server keeps the flag, so the notification survives new sessions.
func (c *Client) MarkNotified(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodPost, "/api/donation-requests/"+requestID+"/mark-notified", authSession, nil, nil)
}

// Watch polls the caller's requests and delivers each approval to the
// notifier exactly once. It blocks until ctx is cancelled. The poll interval
// comes from the server config, falling back to a 30 second default.
func (c *Client) Watch(ctx context.Context, notifier Notifier) error {
	interval := defaultPollInterval
	if cfg, err := c.FetchConfig(ctx); err == nil && cfg.PollIntervalSeconds > 0 {
		interval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}

	seen := make(map[string]struct{})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.checkApprovals(ctx, notifier, seen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.checkApprovals(ctx, notifier, seen)
		}
	}
}

func (c *Client) checkApprovals(ctx context.Context, notifier Notifier, seen map[string]struct{}) {
	requests, err := c.OwnRequests(ctx)
	if err != nil {
		c.log.Warn("poll own requests", zap.Error(err))
		return
	}
	for _, req := range requests {
		if req.Status != RequestApproved || req.NotificationShown {
			continue
		}
		if _, ok := seen[req.ID]; ok {
			continue
		}
		seen[req.ID] = struct{}{}
		notifier.NotifyApproved(req)

		// Best effort. An unmarked approval just notifies again next session.
		if err := c.MarkNotified(ctx, req.ID); err != nil {
			c.log.Warn("mark notified", zap.String("request_id", req.ID), zap.Error(err))
		}
	}
}

// AdminListPending returns every undecided request with its donation and
// requesting organization attached.
func (c *Client) AdminListPending(ctx context.Context) ([]PendingRequest, error) {
	var out []PendingRequest
	if err := c.do(ctx, http.MethodGet, "/api/admin/requests/pending", authAdmin, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDecide approves or rejects a pending request after confirmation.
func (c *Client) AdminDecide(ctx context.Context, requestID, decision, notes string) (*DonationRequest, error) {
	var path string
	switch decision {
	case DecisionApprove:
		path = "/api/admin/requests/" + requestID + "/approve"
	case DecisionReject:
		path = "/api/admin/requests/" + requestID + "/reject"
	default:
		return nil, &FieldError{Field: "decision", Message: "must be APPROVE or REJECT"}
	}
	if !c.confirm.Confirm(fmt.Sprintf("%s request %s?", decision, requestID)) {
		return nil, ErrConfirmationDeclined
	}

	var body any
	if notes != "" {
		body = map[string]string{"notes": notes}
	}
	var req DonationRequest
	if err := c.do(ctx, http.MethodPut, path, authAdmin, body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
