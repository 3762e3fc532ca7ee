package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ApplicationWizard aggregate root (applicant-facing draft)
// ---------------------------------------------------------------------------

// Step is a position in the five-step application wizard.
type Step int

const (
	StepApplicantDetails Step = iota + 1
	StepLoanDetails
	StepDocuments
	StepReview
	StepConfirmation
)

var stepTitles = map[Step]string{
	StepApplicantDetails: "Applicant Details",
	StepLoanDetails:      "Loan Details",
	StepDocuments:        "Documents",
	StepReview:           "Review & Consent",
	StepConfirmation:     "Confirmation",
}

func (s Step) String() string {
	if t, ok := stepTitles[s]; ok {
		return t
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// ConfirmationView selects what step 5 shows. It is a toggle within the
// final step, not a further step.
type ConfirmationView string

const (
	ViewConfirmation ConfirmationView = "confirmation"
	ViewTimeline     ConfirmationView = "timeline"
)

// Defaults for a fresh draft.
var (
	DefaultPrincipal    = decimal.NewFromInt(500_000)
	DefaultTenureMonths = 36
)

// Consents are the three acknowledgements collected on the review step.
type Consents struct {
	ConfirmInfo    bool
	AgreeTerms     bool
	AuthorizeCheck bool
}

// Complete reports whether all three consents were given.
func (c Consents) Complete() bool {
	return c.ConfirmInfo && c.AgreeTerms && c.AuthorizeCheck
}

// ApplicationWizard is one applicant's draft as it moves through the wizard.
// All collected fields survive back-navigation. Once step 5 is reached the
// draft is submitted and every mutator fails with ErrApplicationSubmitted.
type ApplicationWizard struct {
	id           string
	loanType     valueobject.LoanType
	step         Step
	applicant    Applicant
	loanRequest  LoanRequest
	purpose      string
	documents    map[string]struct{}
	consents     Consents
	view         ConfirmationView
	submittedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// NewApplicationWizard starts a draft at step 1 with an empty applicant and
// the default request for loanType.
func NewApplicationWizard(loanType valueobject.LoanType, now time.Time) (ApplicationWizard, error) {
	if loanType.IsZero() {
		return ApplicationWizard{}, fmt.Errorf("%w: loan type is required", valueobject.ErrUnknownLoanType)
	}

	var purpose string
	if purposes := loanType.Purposes(); len(purposes) > 0 {
		purpose = purposes[0]
	}

	return ApplicationWizard{
		id:       uuid.New().String(),
		loanType: loanType,
		step:     StepApplicantDetails,
		loanRequest: LoanRequest{
			Principal:         DefaultPrincipal,
			AnnualRatePercent: loanType.AnnualRatePercent(),
			TenureMonths:      DefaultTenureMonths,
		},
		purpose:   purpose,
		documents: make(map[string]struct{}),
		view:      ViewConfirmation,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ---------------------------------------------------------------------------
// Field updates
// ---------------------------------------------------------------------------

// UpdateApplicant replaces the step-1 details.
func (w ApplicationWizard) UpdateApplicant(a Applicant, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	if err := a.Validate(); err != nil {
		return w, err
	}
	next := w.touch(now)
	next.applicant = a
	return next, nil
}

// UpdateLoanRequest replaces the requested loan configuration. The request is
// not validated here so a half-typed value can be held; Preview and
// submission reject invalid parameters.
func (w ApplicationWizard) UpdateLoanRequest(req LoanRequest, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	next := w.touch(now)
	next.loanRequest = req
	return next, nil
}

// SelectPurpose picks one of the loan type's purposes.
func (w ApplicationWizard) SelectPurpose(purpose string, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	if !slices.Contains(w.loanType.Purposes(), purpose) {
		return w, fmt.Errorf("%w: %q for %s", valueobject.ErrUnknownPurpose, purpose, w.loanType)
	}
	next := w.touch(now)
	next.purpose = purpose
	return next, nil
}

// MarkDocumentUploaded records that a required document has been uploaded.
// Uploading the same document twice is harmless.
func (w ApplicationWizard) MarkDocumentUploaded(name string, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	if !w.loanType.RequiresDocument(name) {
		return w, fmt.Errorf("%w: %q for %s", valueobject.ErrUnknownDocument, name, w.loanType)
	}
	next := w.touch(now)
	next.documents = w.copyDocuments()
	next.documents[name] = struct{}{}
	return next, nil
}

// RemoveDocument forgets an uploaded document.
func (w ApplicationWizard) RemoveDocument(name string, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	next := w.touch(now)
	next.documents = w.copyDocuments()
	delete(next.documents, name)
	return next, nil
}

// UpdateConsents replaces the review-step consents.
func (w ApplicationWizard) UpdateConsents(c Consents, now time.Time) (ApplicationWizard, error) {
	if err := w.ensureEditable(); err != nil {
		return w, err
	}
	next := w.touch(now)
	next.consents = c
	return next, nil
}

// ---------------------------------------------------------------------------
// Navigation
// ---------------------------------------------------------------------------

// Next advances one step. Steps 1 to 3 never block, including on an
// ineligible loan at step 2. Leaving step 4 submits the application: it needs
// all three consents and a valid loan request. Next on step 5 stays put.
func (w ApplicationWizard) Next(now time.Time) (ApplicationWizard, error) {
	switch {
	case w.step >= StepConfirmation:
		return w, nil
	case w.step == StepReview:
		return w.submit(now)
	default:
		next := w.touch(now)
		next.step = w.step + 1
		return next, nil
	}
}

// Back returns to the previous step without discarding anything. Back on
// step 1 stays put; a submitted application cannot be reopened.
func (w ApplicationWizard) Back(now time.Time) (ApplicationWizard, error) {
	if w.IsSubmitted() {
		return w, fmt.Errorf("%w: application %s", valueobject.ErrApplicationSubmitted, w.id)
	}
	if w.step <= StepApplicantDetails {
		return w, nil
	}
	next := w.touch(now)
	next.step = w.step - 1
	return next, nil
}

func (w ApplicationWizard) submit(now time.Time) (ApplicationWizard, error) {
	if !w.consents.Complete() {
		return w, fmt.Errorf("%w: confirmInfo=%t agreeTerms=%t authorizeCheck=%t",
			valueobject.ErrConsentIncomplete,
			w.consents.ConfirmInfo, w.consents.AgreeTerms, w.consents.AuthorizeCheck)
	}
	emi, err := MonthlyInstallment(w.loanRequest)
	if err != nil {
		return w, err
	}

	next := w.touch(now)
	next.step = StepConfirmation
	next.view = ViewConfirmation
	at := now
	next.submittedAt = &at
	next.domainEvents = append(next.domainEvents, event.NewApplicationSubmitted(
		w.id, w.loanType.String(), w.purpose,
		w.loanRequest.Principal, w.loanRequest.AnnualRatePercent, w.loanRequest.TenureMonths,
		emi, now,
	))
	return next, nil
}

// ShowTimeline switches step 5 to the status timeline.
func (w ApplicationWizard) ShowTimeline(now time.Time) (ApplicationWizard, error) {
	return w.switchView(ViewTimeline, now)
}

// ShowConfirmation switches step 5 back to the confirmation view.
func (w ApplicationWizard) ShowConfirmation(now time.Time) (ApplicationWizard, error) {
	return w.switchView(ViewConfirmation, now)
}

func (w ApplicationWizard) switchView(v ConfirmationView, now time.Time) (ApplicationWizard, error) {
	if !w.IsSubmitted() {
		return w, fmt.Errorf("%w: application %s is on step %d", valueobject.ErrApplicationNotSubmitted, w.id, w.step)
	}
	next := w.touch(now)
	next.view = v
	return next, nil
}

// ---------------------------------------------------------------------------
// Submission handoff
// ---------------------------------------------------------------------------

// SubmittedApplication is the finalized application handed to persistence.
type SubmittedApplication struct {
	ID                 string
	LoanType           valueobject.LoanType
	Purpose            string
	Applicant          Applicant
	LoanRequest        LoanRequest
	MonthlyInstallment decimal.Decimal
	Documents          []string
	SubmittedAt        time.Time
}

// Finalize produces the persistence handoff for a submitted draft.
func (w ApplicationWizard) Finalize() (SubmittedApplication, error) {
	if !w.IsSubmitted() {
		return SubmittedApplication{}, fmt.Errorf("%w: application %s is on step %d",
			valueobject.ErrApplicationNotSubmitted, w.id, w.step)
	}
	emi, err := MonthlyInstallment(w.loanRequest)
	if err != nil {
		return SubmittedApplication{}, err
	}
	return SubmittedApplication{
		ID:                 w.id,
		LoanType:           w.loanType,
		Purpose:            w.purpose,
		Applicant:          w.applicant,
		LoanRequest:        w.loanRequest,
		MonthlyInstallment: emi,
		Documents:          w.UploadedDocuments(),
		SubmittedAt:        *w.submittedAt,
	}, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (w ApplicationWizard) ID() string                        { return w.id }
func (w ApplicationWizard) LoanType() valueobject.LoanType    { return w.loanType }
func (w ApplicationWizard) Step() Step                        { return w.step }
func (w ApplicationWizard) Applicant() Applicant              { return w.applicant }
func (w ApplicationWizard) LoanRequest() LoanRequest          { return w.loanRequest }
func (w ApplicationWizard) Purpose() string                   { return w.purpose }
func (w ApplicationWizard) Consents() Consents                { return w.consents }
func (w ApplicationWizard) View() ConfirmationView            { return w.view }
func (w ApplicationWizard) SubmittedAt() *time.Time           { return w.submittedAt }
func (w ApplicationWizard) IsSubmitted() bool                 { return w.submittedAt != nil }
func (w ApplicationWizard) CreatedAt() time.Time              { return w.createdAt }
func (w ApplicationWizard) UpdatedAt() time.Time              { return w.updatedAt }
func (w ApplicationWizard) DomainEvents() []event.DomainEvent { return w.domainEvents }

// UploadedDocuments returns the uploaded document names in sorted order.
func (w ApplicationWizard) UploadedDocuments() []string {
	out := make([]string, 0, len(w.documents))
	for name := range w.documents {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// MissingDocuments lists required documents not yet uploaded, in catalog order.
func (w ApplicationWizard) MissingDocuments() []string {
	var out []string
	for _, name := range w.loanType.RequiredDocuments() {
		if _, ok := w.documents[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// ClearEvents returns a copy with an empty event list (call after publishing).
func (w ApplicationWizard) ClearEvents() ApplicationWizard {
	next := w
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// Snapshot (draft session storage)
// ---------------------------------------------------------------------------

// WizardSnapshot is the serialisable form of a draft.
type WizardSnapshot struct {
	ID                         string          `json:"id"`
	LoanType                   string          `json:"loan_type"`
	Step                       int             `json:"step"`
	FullName                   string          `json:"full_name"`
	Age                        int             `json:"age"`
	EmploymentType             string          `json:"employment_type"`
	MonthlyIncome              decimal.Decimal `json:"monthly_income"`
	ExistingMonthlyObligations decimal.Decimal `json:"existing_monthly_obligations"`
	Principal                  decimal.Decimal `json:"principal"`
	AnnualRatePercent          decimal.Decimal `json:"annual_rate_percent"`
	TenureMonths               int             `json:"tenure_months"`
	Purpose                    string          `json:"purpose"`
	Documents                  []string        `json:"documents"`
	ConfirmInfo                bool            `json:"confirm_info"`
	AgreeTerms                 bool            `json:"agree_terms"`
	AuthorizeCheck             bool            `json:"authorize_check"`
	View                       string          `json:"view"`
	SubmittedAt                *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// Snapshot captures the draft's state. Pending domain events are not included.
func (w ApplicationWizard) Snapshot() WizardSnapshot {
	return WizardSnapshot{
		ID:                         w.id,
		LoanType:                   w.loanType.String(),
		Step:                       int(w.step),
		FullName:                   w.applicant.FullName,
		Age:                        w.applicant.Age,
		EmploymentType:             w.applicant.EmploymentType.String(),
		MonthlyIncome:              w.applicant.MonthlyIncome,
		ExistingMonthlyObligations: w.applicant.ExistingMonthlyObligations,
		Principal:                  w.loanRequest.Principal,
		AnnualRatePercent:          w.loanRequest.AnnualRatePercent,
		TenureMonths:               w.loanRequest.TenureMonths,
		Purpose:                    w.purpose,
		Documents:                  w.UploadedDocuments(),
		ConfirmInfo:                w.consents.ConfirmInfo,
		AgreeTerms:                 w.consents.AgreeTerms,
		AuthorizeCheck:             w.consents.AuthorizeCheck,
		View:                       string(w.view),
		SubmittedAt:                w.submittedAt,
		CreatedAt:                  w.createdAt,
		UpdatedAt:                  w.updatedAt,
	}
}

// RestoreApplicationWizard rebuilds a draft from a snapshot, rejecting values
// that no sequence of transitions could have produced.
func RestoreApplicationWizard(s WizardSnapshot) (ApplicationWizard, error) {
	loanType, err := valueobject.NewLoanType(s.LoanType)
	if err != nil {
		return ApplicationWizard{}, fmt.Errorf("restore wizard %s: %w", s.ID, err)
	}
	employment, err := valueobject.NewEmploymentType(s.EmploymentType)
	if err != nil {
		return ApplicationWizard{}, fmt.Errorf("restore wizard %s: %w", s.ID, err)
	}
	step := Step(s.Step)
	if step < StepApplicantDetails || step > StepConfirmation {
		return ApplicationWizard{}, fmt.Errorf("restore wizard %s: step %d out of range", s.ID, s.Step)
	}
	if (step == StepConfirmation) != (s.SubmittedAt != nil) {
		return ApplicationWizard{}, fmt.Errorf("restore wizard %s: step %d inconsistent with submission", s.ID, s.Step)
	}

	view := ConfirmationView(s.View)
	if view != ViewTimeline {
		view = ViewConfirmation
	}

	docs := make(map[string]struct{}, len(s.Documents))
	for _, d := range s.Documents {
		docs[d] = struct{}{}
	}

	return ApplicationWizard{
		id:       s.ID,
		loanType: loanType,
		step:     step,
		applicant: Applicant{
			FullName:                   s.FullName,
			Age:                        s.Age,
			EmploymentType:             employment,
			MonthlyIncome:              s.MonthlyIncome,
			ExistingMonthlyObligations: s.ExistingMonthlyObligations,
		},
		loanRequest: LoanRequest{
			Principal:         s.Principal,
			AnnualRatePercent: s.AnnualRatePercent,
			TenureMonths:      s.TenureMonths,
		},
		purpose:     s.Purpose,
		documents:   docs,
		consents:    Consents{ConfirmInfo: s.ConfirmInfo, AgreeTerms: s.AgreeTerms, AuthorizeCheck: s.AuthorizeCheck},
		view:        view,
		submittedAt: s.SubmittedAt,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (w ApplicationWizard) ensureEditable() error {
	if w.IsSubmitted() {
		return fmt.Errorf("%w: application %s", valueobject.ErrApplicationSubmitted, w.id)
	}
	return nil
}

func (w ApplicationWizard) touch(now time.Time) ApplicationWizard {
	next := w
	next.updatedAt = now
	next.domainEvents = copyEvents(w.domainEvents)
	return next
}

func (w ApplicationWizard) copyDocuments() map[string]struct{} {
	out := make(map[string]struct{}, len(w.documents)+1)
	for k := range w.documents {
		out[k] = struct{}{}
	}
	return out
}
