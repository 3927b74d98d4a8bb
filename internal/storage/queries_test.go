//go:build integration

package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

func claimParams(key string) storage.ClaimEmailEventParams {
	return storage.ClaimEmailEventParams{
		AppID:          "app1",
		EventType:      "welcome",
		RecipientEmail: "user@example.com",
		DedupKey:       pgtype.Text{String: key, Valid: true},
		ClerkUserID:    pgtype.Text{String: "user_1", Valid: true},
		Status:         storage.EmailEventStatusSent,
		Metadata:       []byte(`{}`),
	}
}

func TestClaimEmailEventFirstClaimWins(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	event, err := queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:user_1"))
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if event.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated event id")
	}
	if event.Status != storage.EmailEventStatusSent {
		t.Errorf("unexpected status: %s", event.Status)
	}

	_, err = queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:user_1"))
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows on duplicate claim, got %v", err)
	}
}

func TestClaimEmailEventDistinctKeys(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	if _, err := queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:user_1")); err != nil {
		t.Fatalf("claim user_1: %v", err)
	}
	if _, err := queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:user_2")); err != nil {
		t.Fatalf("claim user_2: %v", err)
	}
}

func TestClaimEmailEventConcurrent(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:race"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, pgx.ErrNoRows):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", winners)
	}
}

func TestCreateEmailEventNeverBlocks(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	arg := storage.CreateEmailEventParams{
		AppID:          "app1",
		EventType:      "signin_notification",
		RecipientEmail: "ops@example.com",
		Status:         storage.EmailEventStatusSent,
		Metadata:       []byte(`{}`),
	}

	first, err := queries.CreateEmailEvent(ctx, arg)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second, err := queries.CreateEmailEvent(ctx, arg)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct rows")
	}
	if first.DedupKey.Valid || second.DedupKey.Valid {
		t.Error("repeatable events must not carry a dedup key")
	}
}

func TestMarkEmailEventFailed(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	event, err := queries.ClaimEmailEvent(ctx, claimParams("app1:welcome:fail"))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	err = queries.MarkEmailEventFailed(ctx, storage.MarkEmailEventFailedParams{
		ID:           event.ID,
		ErrorMessage: "postmark send failed (422): inactive recipient",
	})
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	counts, err := queries.GetEmailEventStats(ctx, storage.EmailEventStatsFilter{AppID: "app1"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(counts) != 1 || counts[0].Status != storage.EmailEventStatusFailed || counts[0].Count != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestGetEmailEventStatsFilters(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	insert := func(app, event, user string) {
		t.Helper()
		_, err := queries.CreateEmailEvent(ctx, storage.CreateEmailEventParams{
			AppID:          app,
			EventType:      event,
			RecipientEmail: user + "@example.com",
			ClerkUserID:    pgtype.Text{String: user, Valid: true},
			Status:         storage.EmailEventStatusSent,
			Metadata:       []byte(`{}`),
		})
		if err != nil {
			t.Fatalf("insert %s/%s: %v", app, event, err)
		}
	}

	insert("app1", "welcome", "user_1")
	insert("app1", "welcome", "user_2")
	insert("app1", "user_active", "user_1")
	insert("app2", "welcome", "user_1")

	total := func(filter storage.EmailEventStatsFilter) int64 {
		t.Helper()
		counts, err := queries.GetEmailEventStats(ctx, filter)
		if err != nil {
			t.Fatalf("stats %+v: %v", filter, err)
		}
		var n int64
		for _, c := range counts {
			n += c.Count
		}
		return n
	}

	if n := total(storage.EmailEventStatsFilter{AppID: "app1"}); n != 3 {
		t.Errorf("app1 total = %d, want 3", n)
	}
	if n := total(storage.EmailEventStatsFilter{ClerkUserID: "user_1"}); n != 3 {
		t.Errorf("user_1 total = %d, want 3", n)
	}
	if n := total(storage.EmailEventStatsFilter{AppID: "app1", EventType: "welcome"}); n != 2 {
		t.Errorf("app1/welcome total = %d, want 2", n)
	}
	if n := total(storage.EmailEventStatsFilter{AppID: "app3"}); n != 0 {
		t.Errorf("app3 total = %d, want 0", n)
	}
}

func TestUpsertEmailTemplate(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	arg := storage.UpsertEmailTemplateParams{
		AppID:    "app1",
		Name:     "welcome",
		Subject:  "Welcome!",
		HtmlBody: "<p>Hi {{email}}</p>",
	}

	first, err := queries.UpsertEmailTemplate(ctx, arg)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !first.Inserted {
		t.Error("expected first upsert to report inserted")
	}

	arg.Subject = "Welcome back!"
	second, err := queries.UpsertEmailTemplate(ctx, arg)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Inserted {
		t.Error("expected second upsert to report updated")
	}
	if second.ID != first.ID {
		t.Error("update must keep the same row")
	}

	got, err := queries.GetEmailTemplate(ctx, "app1", "welcome")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got.Subject != "Welcome back!" {
		t.Errorf("unexpected subject: %s", got.Subject)
	}
}

func TestGetEmailTemplateMissing(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	_, err := queries.GetEmailTemplate(ctx, "app1", "nope")
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestListEmailTemplates(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"welcome", "waitlist"} {
		_, err := queries.UpsertEmailTemplate(ctx, storage.UpsertEmailTemplateParams{
			AppID:   "app1",
			Name:    name,
			Subject: "s",
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	templates, err := queries.ListEmailTemplates(ctx, "app1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].Name != "waitlist" || templates[1].Name != "welcome" {
		t.Errorf("expected name ordering, got %s, %s", templates[0].Name, templates[1].Name)
	}
}
