package model

import (
	"time"

	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// TimelineStage is one entry of an application's status timeline.
type TimelineStage struct {
	Title  string
	Status valueobject.StageStatus
	Note   string
	At     *time.Time
}

// Timeline is an ordered, read-only list of stages. Completion does not have
// to be contiguous: back-office updates may complete a later stage while an
// earlier one is still open.
type Timeline struct {
	stages []TimelineStage
}

// NewTimeline copies stages into a Timeline.
func NewTimeline(stages []TimelineStage) Timeline {
	out := make([]TimelineStage, len(stages))
	copy(out, stages)
	return Timeline{stages: out}
}

// Stages returns a copy of the stages in order.
func (t Timeline) Stages() []TimelineStage {
	out := make([]TimelineStage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Len is the number of stages.
func (t Timeline) Len() int { return len(t.stages) }

// LastCompletedIndex is the highest index whose stage is completed, or -1.
func (t Timeline) LastCompletedIndex() int {
	last := -1
	for i, s := range t.stages {
		if s.Status.Equal(valueobject.StageCompleted) {
			last = i
		}
	}
	return last
}

// SegmentCompleted reports whether the connector between stage i and i+1 is
// drawn as completed: i < LastCompletedIndex. Out-of-range segments are not.
func (t Timeline) SegmentCompleted(i int) bool {
	if i < 0 || i >= len(t.stages)-1 {
		return false
	}
	return i < t.LastCompletedIndex()
}

// Segments lists SegmentCompleted for every connector, len(stages)-1 entries.
func (t Timeline) Segments() []bool {
	if len(t.stages) < 2 {
		return nil
	}
	last := t.LastCompletedIndex()
	out := make([]bool, len(t.stages)-1)
	for i := range out {
		out[i] = i < last
	}
	return out
}

// ---------------------------------------------------------------------------
// Lifecycle projection
// ---------------------------------------------------------------------------

// Stage titles of the lending lifecycle, in order.
const (
	StageApplicationSubmitted = "Application Submitted"
	StageDocumentVerification = "Document Verification"
	StageRiskAssessment       = "Risk Assessment"
	StageManagerReview        = "Manager Review"
	StageSanctionApproved     = "Sanction Approved"
	StageSanctionLetterSent   = "Sanction Letter Sent"
	StageAmountDisbursed      = "Amount Disbursed"
)

// CaseOutcome is the part of a verification case the timeline needs.
type CaseOutcome struct {
	Decision        valueobject.CaseDecision
	RejectionReason valueobject.RejectionReason
	DecidedAt       *time.Time
}

// OutcomeOf extracts the timeline-relevant view of a case.
func OutcomeOf(c VerificationCase) CaseOutcome {
	return CaseOutcome{
		Decision:        c.Decision(),
		RejectionReason: c.RejectionReason(),
		DecidedAt:       c.DecidedAt(),
	}
}

// SanctionLetter describes whether the sanction letter can be downloaded.
type SanctionLetter struct {
	Ready    bool
	FileName string
}

// LifecycleStatus is the applicant's tracking view of a submitted application.
type LifecycleStatus struct {
	Timeline       Timeline
	SanctionLetter SanctionLetter
}

// ProjectLifecycle derives the standard seven-stage timeline from a submitted
// application, the outcomes of its loan-document and KYC cases, and its
// sanction. A nil outcome means the case has not been opened yet; a nil
// sanction means no manager has picked the application up.
func ProjectLifecycle(app SubmittedApplication, documents, kyc *CaseOutcome, sanction *Sanction) LifecycleStatus {
	submittedAt := app.SubmittedAt
	stages := []TimelineStage{
		{
			Title:  StageApplicationSubmitted,
			Status: valueobject.StageCompleted,
			Note:   "Your application has been received",
			At:     &submittedAt,
		},
		reviewStage(StageDocumentVerification, documents),
		reviewStage(StageRiskAssessment, kyc),
	}

	manager := TimelineStage{Title: StageManagerReview, Status: valueobject.StagePending}
	approval := TimelineStage{Title: StageSanctionApproved, Status: valueobject.StagePending}
	letter := TimelineStage{Title: StageSanctionLetterSent, Status: valueobject.StagePending}
	disbursed := TimelineStage{Title: StageAmountDisbursed, Status: valueobject.StagePending}

	switch {
	case sanction != nil:
		sanctionStages(*sanction, &manager, &approval, &letter, &disbursed)
	case approved(documents) && approved(kyc):
		manager.Status = valueobject.StageInProgress
		manager.Note = "Awaiting manager review"
	case approved(documents) || approved(kyc):
		manager.Status = valueobject.StageInProgress
		manager.Note = "Awaiting remaining verification"
	}
	stages = append(stages, manager, approval, letter, disbursed)

	status := LifecycleStatus{Timeline: NewTimeline(stages)}
	if sanction != nil && sanction.Status().Reached(valueobject.SanctionApproved) {
		status.SanctionLetter = SanctionLetter{
			Ready:    true,
			FileName: "sanction-letter-" + app.ID + ".pdf",
		}
	}
	return status
}

func sanctionStages(s Sanction, manager, approval, letter, disbursed *TimelineStage) {
	st := s.Status()

	switch {
	case st.Equal(valueobject.SanctionAwaitingManager):
		manager.Status = valueobject.StageInProgress
		manager.Note = "Awaiting manager review"
	case st.Equal(valueobject.SanctionRejected) && s.AdminDecidedAt() == nil:
		manager.Status = valueobject.StageInProgress
		manager.At = s.ManagerDecidedAt()
		manager.Note = "Not sanctioned"
	default:
		manager.Status = valueobject.StageCompleted
		manager.At = s.ManagerDecidedAt()
	}

	switch {
	case st.Equal(valueobject.SanctionAwaitingAdmin):
		approval.Status = valueobject.StageInProgress
		approval.Note = "Awaiting admin approval"
	case st.Equal(valueobject.SanctionRejected) && s.AdminDecidedAt() != nil:
		approval.Status = valueobject.StageInProgress
		approval.At = s.AdminDecidedAt()
		approval.Note = "Not sanctioned"
	case st.Reached(valueobject.SanctionApproved):
		approval.Status = valueobject.StageCompleted
		approval.At = s.ApprovedAt()
	}

	switch {
	case st.Equal(valueobject.SanctionApproved):
		letter.Status = valueobject.StageInProgress
		letter.Note = "Sanction letter ready for download"
	case st.Reached(valueobject.SanctionLetterSent):
		letter.Status = valueobject.StageCompleted
		letter.At = s.LetterSentAt()
		if st.Reached(valueobject.SanctionSignedReceived) {
			letter.Note = "Signed copy received"
		}
	}

	switch {
	case st.Equal(valueobject.SanctionSignedReceived):
		disbursed.Status = valueobject.StageInProgress
		disbursed.Note = "Disbursement scheduled"
	case st.Reached(valueobject.SanctionDisbursed):
		disbursed.Status = valueobject.StageCompleted
		disbursed.At = s.DisbursedAt()
	}
}

func reviewStage(title string, outcome *CaseOutcome) TimelineStage {
	stage := TimelineStage{Title: title, Status: valueobject.StagePending}
	if outcome == nil {
		return stage
	}
	switch {
	case outcome.Decision.Equal(valueobject.DecisionApproved):
		stage.Status = valueobject.StageCompleted
		stage.At = outcome.DecidedAt
		stage.Note = "Verified"
	case outcome.Decision.Equal(valueobject.DecisionRejected):
		stage.Status = valueobject.StageInProgress
		stage.At = outcome.DecidedAt
		stage.Note = "Returned: " + outcome.RejectionReason.Label()
	default:
		stage.Status = valueobject.StageInProgress
		stage.Note = "Under review"
	}
	return stage
}

func approved(o *CaseOutcome) bool {
	return o != nil && o.Decision.Equal(valueobject.DecisionApproved)
}
