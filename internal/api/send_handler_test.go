package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shamanic-technologies/lifecycle-emails/internal/clerk"
	"github.com/shamanic-technologies/lifecycle-emails/internal/send"
	"github.com/shamanic-technologies/lifecycle-emails/internal/template"
)

type mockEmailSender struct {
	sendFn func(ctx context.Context, req send.Request) ([]send.Result, error)
}

func (m *mockEmailSender) Send(ctx context.Context, req send.Request) ([]send.Result, error) {
	return m.sendFn(ctx, req)
}

func postSend(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendEmailHandlerSuccess(t *testing.T) {
	var got send.Request
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			got = req
			return []send.Result{{Email: "user@example.com", Sent: true}}, nil
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{
		"appId": "mcpfactory",
		"eventType": "welcome",
		"clerkUserId": "user_123",
		"metadata": {"plan": "pro"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.AppID != "mcpfactory" || got.EventType != "welcome" || got.ClerkUserID != "user_123" {
		t.Errorf("unexpected request passed to sender: %+v", got)
	}
	if got.Metadata["plan"] != "pro" {
		t.Errorf("metadata not forwarded: %v", got.Metadata)
	}

	var resp struct {
		Results []send.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || !resp.Results[0].Sent {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestSendEmailHandlerDuplicateReported(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			return []send.Result{{Email: "user@example.com", Sent: false, Reason: send.ReasonDuplicate}}, nil
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{"appId":"app1","eventType":"welcome","clerkUserId":"user_1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"reason":"duplicate"`)) {
		t.Errorf("expected duplicate reason in body: %s", rec.Body.String())
	}
}

func TestSendEmailHandlerValidationError(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			return nil, &send.ValidationError{Message: "appId is required"}
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{"eventType":"welcome"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "appId is required") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSendEmailHandlerUnknownRecipient(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			return nil, &clerk.NotFoundError{Resource: "user", ID: "user_404"}
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{"appId":"app1","eventType":"welcome","clerkUserId":"user_404"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendEmailHandlerMissingTemplate(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			return nil, &template.ErrNotFound{AppID: "app1", EventType: "mystery"}
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{"appId":"app1","eventType":"mystery","recipientEmail":"a@b.c"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mystery") {
		t.Errorf("expected event type in error body: %s", rec.Body.String())
	}
}

func TestSendEmailHandlerInternalError(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			return nil, errors.New("connection refused")
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{"appId":"app1","eventType":"welcome","recipientEmail":"a@b.c"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error details must not leak to clients")
	}
}

func TestSendEmailHandlerInvalidBody(t *testing.T) {
	sender := &mockEmailSender{
		sendFn: func(ctx context.Context, req send.Request) ([]send.Result, error) {
			t.Error("sender should not be called")
			return nil, nil
		},
	}

	rec := postSend(t, SendEmailHandler(sender), `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
