package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Application wizard requests
// ---------------------------------------------------------------------------

// StartApplicationRequest opens a new draft for a loan product.
type StartApplicationRequest struct {
	LoanType string `json:"loan_type"`
}

// ApplicantInput is the step-1 form.
type ApplicantInput struct {
	FullName                   string          `json:"full_name"`
	Age                        int             `json:"age"`
	EmploymentType             string          `json:"employment_type"`
	MonthlyIncome              decimal.Decimal `json:"monthly_income"`
	ExistingMonthlyObligations decimal.Decimal `json:"existing_monthly_obligations"`
}

// LoanRequestInput is the step-2 form. A zero AnnualRatePercent is taken
// literally; callers that want the product rate leave it to the draft.
type LoanRequestInput struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TenureMonths      int             `json:"tenure_months"`
}

// ConsentsInput is the step-4 form.
type ConsentsInput struct {
	ConfirmInfo    bool `json:"confirm_info"`
	AgreeTerms     bool `json:"agree_terms"`
	AuthorizeCheck bool `json:"authorize_check"`
}

// UpdateApplicationRequest carries a typed delta for a draft. Only the
// non-nil / non-empty sections are applied, in field order.
type UpdateApplicationRequest struct {
	ApplicationID  string            `json:"application_id"`
	Applicant      *ApplicantInput   `json:"applicant,omitempty"`
	LoanRequest    *LoanRequestInput `json:"loan_request,omitempty"`
	Purpose        string            `json:"purpose,omitempty"`
	UploadDocument string            `json:"upload_document,omitempty"`
	RemoveDocument string            `json:"remove_document,omitempty"`
	Consents       *ConsentsInput    `json:"consents,omitempty"`
}

// Navigation actions accepted by NavigateApplicationRequest.
const (
	NavigateNext             = "next"
	NavigateBack             = "back"
	NavigateShowTimeline     = "show_timeline"
	NavigateShowConfirmation = "show_confirmation"
)

// NavigateApplicationRequest moves a draft through the wizard.
type NavigateApplicationRequest struct {
	ApplicationID string `json:"application_id"`
	Action        string `json:"action"`
}

// GetApplicationDraftRequest identifies a draft.
type GetApplicationDraftRequest struct {
	ApplicationID string `json:"application_id"`
}

// PreviewLoanRequest is a stateless EMI and eligibility calculation. When
// LoanType is set and AnnualRatePercent is nil the product rate is used.
type PreviewLoanRequest struct {
	LoanType            string           `json:"loan_type,omitempty"`
	Principal           decimal.Decimal  `json:"principal"`
	AnnualRatePercent   *decimal.Decimal `json:"annual_rate_percent,omitempty"`
	TenureMonths        int              `json:"tenure_months"`
	MonthlyIncome       decimal.Decimal  `json:"monthly_income"`
	ExistingObligations decimal.Decimal  `json:"existing_obligations"`
	IncludeSchedule     bool             `json:"include_schedule"`
}

// TrackApplicationRequest identifies a submitted application.
type TrackApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

// ---------------------------------------------------------------------------
// Verification requests
// ---------------------------------------------------------------------------

// ItemInput names one item when opening a case.
type ItemInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// OpenVerificationCaseRequest opens a KYC or loan-document case. Items may be
// empty to use the subject type's default checklist.
type OpenVerificationCaseRequest struct {
	SubjectType   string      `json:"subject_type"`
	ApplicationID string      `json:"application_id"`
	Items         []ItemInput `json:"items,omitempty"`
}

// Item review actions.
const (
	ItemActionVerify = "verify"
	ItemActionReject = "reject"
	ItemActionReset  = "reset"
)

// ReviewItemRequest applies a reviewer action to one item.
type ReviewItemRequest struct {
	CaseID   string `json:"case_id"`
	ItemName string `json:"item_name"`
	Action   string `json:"action"`
}

// ScoreCaseRequest sets raw component inputs and optionally submits the
// scorecard. Keys are score component names.
type ScoreCaseRequest struct {
	CaseID     string            `json:"case_id"`
	Components map[string]string `json:"components,omitempty"`
	Submit     bool              `json:"submit"`
}

// Case decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DecideCaseRequest approves or rejects a case.
type DecideCaseRequest struct {
	CaseID   string `json:"case_id"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// GetVerificationCaseRequest identifies a case.
type GetVerificationCaseRequest struct {
	CaseID string `json:"case_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse is one schedule row.
type InstallmentResponse struct {
	Sequence         int             `json:"sequence"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// LoanPreviewResponse is the live EMI and affordability view.
type LoanPreviewResponse struct {
	MonthlyInstallment decimal.Decimal       `json:"monthly_installment"`
	TotalInterest      decimal.Decimal       `json:"total_interest"`
	TotalPayable       decimal.Decimal       `json:"total_payable"`
	Eligible           bool                  `json:"eligible"`
	Headroom           decimal.Decimal       `json:"headroom"`
	Ceiling            decimal.Decimal       `json:"ceiling"`
	Schedule           []InstallmentResponse `json:"schedule,omitempty"`
}

// ApplicationDraftResponse is the external representation of a draft.
type ApplicationDraftResponse struct {
	ID                string               `json:"id"`
	LoanType          string               `json:"loan_type"`
	Step              int                  `json:"step"`
	StepTitle         string               `json:"step_title"`
	Applicant         ApplicantInput       `json:"applicant"`
	LoanRequest       LoanRequestInput     `json:"loan_request"`
	Purpose           string               `json:"purpose"`
	Purposes          []string             `json:"purposes"`
	UploadedDocuments []string             `json:"uploaded_documents"`
	MissingDocuments  []string             `json:"missing_documents"`
	Consents          ConsentsInput        `json:"consents"`
	View              string               `json:"view"`
	Submitted         bool                 `json:"submitted"`
	SubmittedAt       *time.Time           `json:"submitted_at,omitempty"`
	Preview           *LoanPreviewResponse `json:"preview,omitempty"`
	PreviewError      string               `json:"preview_error,omitempty"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// ItemResponse is one verification item.
type ItemResponse struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// ScoreResponse is a scorecard.
type ScoreResponse struct {
	IncomeStability   int  `json:"income_stability"`
	ExistingEMIBurden int  `json:"existing_emi_burden"`
	EmploymentType    int  `json:"employment_type"`
	DocumentQuality   int  `json:"document_quality"`
	Overall           int  `json:"overall"`
	BureauScore       int  `json:"bureau_score"`
	Submitted         bool `json:"submitted"`
}

// VerificationCaseResponse is the external representation of a case.
type VerificationCaseResponse struct {
	ID              string         `json:"id"`
	ApplicationID   string         `json:"application_id,omitempty"`
	SubjectType     string         `json:"subject_type"`
	Items           []ItemResponse `json:"items"`
	Progress        map[string]int `json:"progress"`
	OverallProgress int            `json:"overall_progress"`
	Score           *ScoreResponse `json:"score,omitempty"`
	Decision        string         `json:"decision"`
	DecisionNotes   string         `json:"decision_notes,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ScoreCaseResponse reports the case after scoring.
type ScoreCaseResponse struct {
	Case             VerificationCaseResponse `json:"case"`
	AlreadySubmitted bool                     `json:"already_submitted"`
}

// DecisionRecordResponse is the case decision artefact.
type DecisionRecordResponse struct {
	CaseID          string         `json:"case_id"`
	ApplicationID   string         `json:"application_id,omitempty"`
	SubjectType     string         `json:"subject_type"`
	Decision        string         `json:"decision"`
	ScoreBreakdown  *ScoreResponse `json:"score_breakdown,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// StageResponse is one timeline stage.
type StageResponse struct {
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"status_label"`
	Note        string     `json:"note,omitempty"`
	At          *time.Time `json:"at,omitempty"`
}

// SanctionLetterResponse describes the sanction letter card.
type SanctionLetterResponse struct {
	Ready    bool   `json:"ready"`
	FileName string `json:"file_name,omitempty"`
}

// TrackApplicationResponse is the status timeline of a submitted application.
type TrackApplicationResponse struct {
	ApplicationID      string                 `json:"application_id"`
	Stages             []StageResponse        `json:"stages"`
	LastCompletedIndex int                    `json:"last_completed_index"`
	Segments           []bool                 `json:"segments"`
	SanctionLetter     SanctionLetterResponse `json:"sanction_letter"`
}

// IntakeApplicationRequest opens the standard review cases for a submitted
// application.
type IntakeApplicationRequest struct {
	ApplicationID string
}

// IntakeApplicationResponse lists the cases opened by this intake; subjects
// that already had a case are left out.
type IntakeApplicationResponse struct {
	Opened []VerificationCaseResponse `json:"opened"`
}

// ---------------------------------------------------------------------------
// Sanction requests and responses
// ---------------------------------------------------------------------------

// Sanction stages accepted by DecideSanctionRequest.
const (
	SanctionStageManager = "manager"
	SanctionStageAdmin   = "admin"
)

// DecideSanctionRequest records a manager or admin decision. ApproverID is
// filled from the caller's credentials, not the request body.
type DecideSanctionRequest struct {
	ApplicationID string `json:"application_id"`
	Stage         string `json:"stage"`
	Approve       bool   `json:"approve"`
	Notes         string `json:"notes,omitempty"`
	ApproverID    string `json:"-"`
}

// Actions accepted by AdvanceSanctionRequest.
const (
	SanctionActionSendLetter     = "send-letter"
	SanctionActionSignedReceived = "signed-received"
)

// AdvanceSanctionRequest moves an approved sanction through its letter.
type AdvanceSanctionRequest struct {
	ApplicationID string `json:"application_id"`
	Action        string `json:"action"`
}

// SanctionResponse is the approval workflow of one application.
type SanctionResponse struct {
	ApplicationID         string          `json:"application_id"`
	Principal             decimal.Decimal `json:"principal"`
	Status                string          `json:"status"`
	RequiresAdminApproval bool            `json:"requires_admin_approval"`
	ManagerID             string          `json:"manager_id,omitempty"`
	ManagerDecidedAt      *time.Time      `json:"manager_decided_at,omitempty"`
	AdminID               string          `json:"admin_id,omitempty"`
	AdminDecidedAt        *time.Time      `json:"admin_decided_at,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	LetterSentAt          *time.Time      `json:"letter_sent_at,omitempty"`
	SignedReceivedAt      *time.Time      `json:"signed_received_at,omitempty"`
	DisbursedAt           *time.Time      `json:"disbursed_at,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ---------------------------------------------------------------------------
// Loan requests and responses
// ---------------------------------------------------------------------------

// DisburseLoanRequest turns a signed sanction into a loan.
type DisburseLoanRequest struct {
	ApplicationID string `json:"application_id"`
}

// MakePaymentRequest pays the next installment of a loan. A nil Amount pays
// exactly what is due.
type MakePaymentRequest struct {
	LoanID string           `json:"loan_id"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// GetLoanRequest looks a loan up by LoanID or, when that is empty, by
// ApplicationID.
type GetLoanRequest struct {
	LoanID        string `json:"loan_id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

// PaymentResponse is one paid installment.
type PaymentResponse struct {
	Sequence     int             `json:"sequence"`
	Amount       decimal.Decimal `json:"amount"`
	Principal    decimal.Decimal `json:"principal"`
	Interest     decimal.Decimal `json:"interest"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	DueDate      time.Time       `json:"due_date"`
	PaidAt       time.Time       `json:"paid_at"`
}

// LoanResponse is the repayment position of a loan.
type LoanResponse struct {
	ID                 string                `json:"id"`
	ApplicationID      string                `json:"application_id"`
	LoanType           string                `json:"loan_type"`
	Status             string                `json:"status"`
	Principal          decimal.Decimal       `json:"principal"`
	AnnualRatePercent  decimal.Decimal       `json:"annual_rate_percent"`
	TenureMonths       int                   `json:"tenure_months"`
	MonthlyInstallment decimal.Decimal       `json:"monthly_installment"`
	RemainingTenure    int                   `json:"remaining_tenure"`
	OutstandingBalance decimal.Decimal       `json:"outstanding_balance"`
	RemainingAmount    decimal.Decimal       `json:"remaining_amount"`
	TotalPaid          decimal.Decimal       `json:"total_paid"`
	NextPaymentDue     *time.Time            `json:"next_payment_due,omitempty"`
	NextInstallment    *InstallmentResponse  `json:"next_installment,omitempty"`
	DisbursedAt        time.Time             `json:"disbursed_at"`
	Schedule           []InstallmentResponse `json:"schedule"`
	Payments           []PaymentResponse     `json:"payments"`
}

// MakePaymentResponse reports the installment just paid and the loan after
// it.
type MakePaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Loan    LoanResponse    `json:"loan"`
}

// DisburseLoanResponse reports the sanction and the loan it produced.
type DisburseLoanResponse struct {
	Sanction SanctionResponse `json:"sanction"`
	Loan     LoanResponse     `json:"loan"`
}
