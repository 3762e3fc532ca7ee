package usecase_test

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockDraftStore struct {
	saveFunc func(ctx context.Context, w model.ApplicationWizard) error
	drafts   map[string]model.ApplicationWizard
	saves    int
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{drafts: make(map[string]model.ApplicationWizard)}
}

func (m *mockDraftStore) Save(ctx context.Context, w model.ApplicationWizard) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, w); err != nil {
			return err
		}
	}
	m.saves++
	m.drafts[w.ID()] = w.ClearEvents()
	return nil
}

func (m *mockDraftStore) Load(_ context.Context, id string) (model.ApplicationWizard, error) {
	w, ok := m.drafts[id]
	if !ok {
		return model.ApplicationWizard{}, fmt.Errorf("draft %s: %w", id, valueobject.ErrNotFound)
	}
	return w, nil
}

type mockApplicationRepository struct {
	saveFunc func(ctx context.Context, app model.SubmittedApplication) error
	apps     map[string]model.SubmittedApplication
}

func newMockApplicationRepository() *mockApplicationRepository {
	return &mockApplicationRepository{apps: make(map[string]model.SubmittedApplication)}
}

func (m *mockApplicationRepository) Save(ctx context.Context, app model.SubmittedApplication) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, app); err != nil {
			return err
		}
	}
	m.apps[app.ID] = app
	return nil
}

func (m *mockApplicationRepository) FindByID(_ context.Context, id string) (model.SubmittedApplication, error) {
	app, ok := m.apps[id]
	if !ok {
		return model.SubmittedApplication{}, fmt.Errorf("application %s: %w", id, valueobject.ErrNotFound)
	}
	return app, nil
}

type mockCaseRepository struct {
	saveFunc func(ctx context.Context, c model.VerificationCase) error
	cases    map[string]model.VerificationCase
	order    []string
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{cases: make(map[string]model.VerificationCase)}
}

func (m *mockCaseRepository) Save(ctx context.Context, c model.VerificationCase) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, c); err != nil {
			return err
		}
	}
	if _, ok := m.cases[c.ID()]; !ok {
		m.order = append(m.order, c.ID())
	}
	m.cases[c.ID()] = c.ClearEvents()
	return nil
}

func (m *mockCaseRepository) FindByID(_ context.Context, id string) (model.VerificationCase, error) {
	c, ok := m.cases[id]
	if !ok {
		return model.VerificationCase{}, fmt.Errorf("case %s: %w", id, valueobject.ErrNotFound)
	}
	return c, nil
}

func (m *mockCaseRepository) FindByApplicationID(_ context.Context, applicationID string) ([]model.VerificationCase, error) {
	var out []model.VerificationCase
	for _, id := range m.order {
		if c := m.cases[id]; c.ApplicationID() == applicationID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockSanctionRepository struct {
	saveFunc  func(ctx context.Context, s model.Sanction) error
	sanctions map[string]model.Sanction
}

func newMockSanctionRepository() *mockSanctionRepository {
	return &mockSanctionRepository{sanctions: make(map[string]model.Sanction)}
}

func (m *mockSanctionRepository) Save(ctx context.Context, s model.Sanction) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, s); err != nil {
			return err
		}
	}
	m.sanctions[s.ApplicationID()] = s.ClearEvents()
	return nil
}

func (m *mockSanctionRepository) FindByApplicationID(_ context.Context, applicationID string) (model.Sanction, error) {
	s, ok := m.sanctions[applicationID]
	if !ok {
		return model.Sanction{}, fmt.Errorf("sanction %s: %w", applicationID, valueobject.ErrNotFound)
	}
	return s, nil
}

type mockLoanRepository struct {
	saveFunc func(ctx context.Context, l model.Loan) error
	loans    map[string]model.Loan
}

func newMockLoanRepository() *mockLoanRepository {
	return &mockLoanRepository{loans: make(map[string]model.Loan)}
}

func (m *mockLoanRepository) Save(ctx context.Context, l model.Loan) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, l); err != nil {
			return err
		}
	}
	m.loans[l.ID()] = l.ClearEvents()
	return nil
}

func (m *mockLoanRepository) FindByID(_ context.Context, id string) (model.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return model.Loan{}, fmt.Errorf("loan %s: %w", id, valueobject.ErrNotFound)
	}
	return l, nil
}

func (m *mockLoanRepository) FindByApplicationID(_ context.Context, applicationID string) (model.Loan, error) {
	for _, l := range m.loans {
		if l.ApplicationID() == applicationID {
			return l, nil
		}
	}
	return model.Loan{}, fmt.Errorf("loan for application %s: %w", applicationID, valueobject.ErrNotFound)
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	out := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		out = append(out, e.EventType())
	}
	return out
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, record model.DecisionRecord) error
	records    []model.DecisionRecord
}

func (m *mockNotifier) NotifyDecision(ctx context.Context, record model.DecisionRecord) error {
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, record)
	}
	m.records = append(m.records, record)
	return nil
}

type mockMetrics struct {
	submitted []string
	decided   []string
	sanctions []string
	disbursed []string
	payments  []string
}

func (m *mockMetrics) ApplicationSubmitted(_ context.Context, loanType string) {
	m.submitted = append(m.submitted, loanType)
}

func (m *mockMetrics) CaseDecided(_ context.Context, subjectType, decision string) {
	m.decided = append(m.decided, subjectType+"/"+decision)
}

func (m *mockMetrics) SanctionDecided(_ context.Context, stage, status string) {
	m.sanctions = append(m.sanctions, stage+"/"+status)
}

func (m *mockMetrics) LoanDisbursed(_ context.Context, loanType string) {
	m.disbursed = append(m.disbursed, loanType)
}

func (m *mockMetrics) PaymentReceived(_ context.Context, loanType string) {
	m.payments = append(m.payments, loanType)
}
