package api

import (
	"context"

	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

// mockQuerier implements storage.Querier with function fields so each test
// overrides only what it needs.
type mockQuerier struct {
	claimEmailEventFn     func(ctx context.Context, arg storage.ClaimEmailEventParams) (storage.EmailEvent, error)
	createEmailEventFn    func(ctx context.Context, arg storage.CreateEmailEventParams) (storage.EmailEvent, error)
	markEmailEventFn      func(ctx context.Context, arg storage.MarkEmailEventFailedParams) error
	getEmailEventStatsFn  func(ctx context.Context, filter storage.EmailEventStatsFilter) ([]storage.EmailEventStatusCount, error)
	upsertEmailTemplateFn func(ctx context.Context, arg storage.UpsertEmailTemplateParams) (storage.UpsertEmailTemplateRow, error)
	getEmailTemplateFn    func(ctx context.Context, appID, name string) (storage.EmailTemplate, error)
	listEmailTemplatesFn  func(ctx context.Context, appID string) ([]storage.EmailTemplate, error)
}

func (m *mockQuerier) ClaimEmailEvent(ctx context.Context, arg storage.ClaimEmailEventParams) (storage.EmailEvent, error) {
	return m.claimEmailEventFn(ctx, arg)
}

func (m *mockQuerier) CreateEmailEvent(ctx context.Context, arg storage.CreateEmailEventParams) (storage.EmailEvent, error) {
	return m.createEmailEventFn(ctx, arg)
}

func (m *mockQuerier) MarkEmailEventFailed(ctx context.Context, arg storage.MarkEmailEventFailedParams) error {
	return m.markEmailEventFn(ctx, arg)
}

func (m *mockQuerier) GetEmailEventStats(ctx context.Context, filter storage.EmailEventStatsFilter) ([]storage.EmailEventStatusCount, error) {
	return m.getEmailEventStatsFn(ctx, filter)
}

func (m *mockQuerier) UpsertEmailTemplate(ctx context.Context, arg storage.UpsertEmailTemplateParams) (storage.UpsertEmailTemplateRow, error) {
	return m.upsertEmailTemplateFn(ctx, arg)
}

func (m *mockQuerier) GetEmailTemplate(ctx context.Context, appID, name string) (storage.EmailTemplate, error) {
	return m.getEmailTemplateFn(ctx, appID, name)
}

func (m *mockQuerier) ListEmailTemplates(ctx context.Context, appID string) ([]storage.EmailTemplate, error) {
	return m.listEmailTemplatesFn(ctx, appID)
}
