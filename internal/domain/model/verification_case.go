package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// VerificationCase aggregate root (back-office review)
// ---------------------------------------------------------------------------

// VerificationCase tracks the review of one KYC or loan-document bundle.
// It is an immutable aggregate: every transition returns a new copy and
// leaves the receiver untouched when it fails.
type VerificationCase struct {
	id              string
	applicationID   string
	subject         valueobject.SubjectType
	items           []VerificationItem
	score           *ScoreBreakdown
	decision        valueobject.CaseDecision
	decisionNotes   string
	rejectionReason valueobject.RejectionReason
	decidedAt       *time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// OpenVerificationCase creates a case with every item pending. When specs is
// empty the subject type's default checklist is used. KYC cases start with an
// empty scorecard because their approval depends on it.
func OpenVerificationCase(
	subject valueobject.SubjectType,
	applicationID string,
	specs []ItemSpec,
	now time.Time,
) (VerificationCase, error) {
	if subject.IsZero() {
		return VerificationCase{}, fmt.Errorf("%w: subject type is required", valueobject.ErrInvalidValue)
	}
	if len(specs) == 0 {
		specs = DefaultItemSpecs(subject)
	}

	seen := make(map[string]struct{}, len(specs))
	items := make([]VerificationItem, 0, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return VerificationCase{}, fmt.Errorf("%w: verification item name is required", valueobject.ErrInvalidValue)
		}
		if _, dup := seen[s.Name]; dup {
			return VerificationCase{}, fmt.Errorf("%w: duplicate verification item %q", valueobject.ErrInvalidValue, s.Name)
		}
		seen[s.Name] = struct{}{}
		items = append(items, NewVerificationItem(s.Name, s.Category))
	}

	c := VerificationCase{
		id:            uuid.New().String(),
		applicationID: applicationID,
		subject:       subject,
		items:         items,
		decision:      valueobject.DecisionPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}
	if subject.RequiresScore() {
		sb := NewScoreBreakdown()
		c.score = &sb
	}

	c.domainEvents = append(c.domainEvents, event.NewVerificationCaseOpened(
		c.id, subject.String(), applicationID, len(items), now,
	))
	return c, nil
}

// ReconstructVerificationCase rebuilds an aggregate from persistence without side-effects.
func ReconstructVerificationCase(
	id, applicationID string,
	subject valueobject.SubjectType,
	items []VerificationItem,
	score *ScoreBreakdown,
	decision valueobject.CaseDecision,
	decisionNotes string,
	rejectionReason valueobject.RejectionReason,
	decidedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) VerificationCase {
	return VerificationCase{
		id:              id,
		applicationID:   applicationID,
		subject:         subject,
		items:           items,
		score:           score,
		decision:        decision,
		decisionNotes:   decisionNotes,
		rejectionReason: rejectionReason,
		decidedAt:       decidedAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Item review
// ---------------------------------------------------------------------------

// VerifyItem marks a pending item verified.
func (c VerificationCase) VerifyItem(name string, now time.Time) (VerificationCase, error) {
	return c.updateItem(name, now, func(i VerificationItem) (VerificationItem, error) {
		return i.review(valueobject.ItemStatusVerified, now)
	})
}

// RejectItem marks a pending item rejected.
func (c VerificationCase) RejectItem(name string, now time.Time) (VerificationCase, error) {
	return c.updateItem(name, now, func(i VerificationItem) (VerificationItem, error) {
		return i.review(valueobject.ItemStatusRejected, now)
	})
}

// ResetItem is the explicit way back to pending for a reviewed item.
func (c VerificationCase) ResetItem(name string, now time.Time) (VerificationCase, error) {
	return c.updateItem(name, now, func(i VerificationItem) (VerificationItem, error) {
		return i.reset(), nil
	})
}

func (c VerificationCase) updateItem(
	name string,
	now time.Time,
	fn func(VerificationItem) (VerificationItem, error),
) (VerificationCase, error) {
	if c.decision.IsFinal() {
		return c, fmt.Errorf("%w: case %s is %s", valueobject.ErrCaseAlreadyDecided, c.id, c.decision)
	}

	idx := c.itemIndex(name)
	if idx < 0 {
		return c, fmt.Errorf("%w: %q in case %s", valueobject.ErrItemNotFound, name, c.id)
	}

	updatedItem, err := fn(c.items[idx])
	if err != nil {
		return c, err
	}

	next := c.touch(now)
	next.items = make([]VerificationItem, len(c.items))
	copy(next.items, c.items)
	next.items[idx] = updatedItem
	return next, nil
}

func (c VerificationCase) itemIndex(name string) int {
	for i, it := range c.items {
		if it.name == name {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Scoring
// ---------------------------------------------------------------------------

// SetScoreComponent sets one sub-score, attaching a scorecard to the case if
// it has none yet.
func (c VerificationCase) SetScoreComponent(component ScoreComponent, value int, now time.Time) (VerificationCase, error) {
	return c.updateScore(now, func(s ScoreBreakdown) (ScoreBreakdown, error) {
		return s.WithComponent(component, value)
	})
}

// SetScoreComponentInput is SetScoreComponent for raw form input.
func (c VerificationCase) SetScoreComponentInput(component ScoreComponent, raw string, now time.Time) (VerificationCase, error) {
	return c.updateScore(now, func(s ScoreBreakdown) (ScoreBreakdown, error) {
		return s.WithComponentInput(component, raw)
	})
}

// SubmitScore freezes the case's scorecard. A repeated submit is reported
// through the outcome and leaves the case unchanged.
func (c VerificationCase) SubmitScore(now time.Time) (VerificationCase, SubmitOutcome, error) {
	if c.score != nil && c.score.IsSubmitted() {
		return c, SubmitOutcomeAlreadySubmitted, nil
	}
	if c.decision.IsFinal() {
		return c, SubmitOutcomeAlreadySubmitted, fmt.Errorf("%w: case %s is %s", valueobject.ErrCaseAlreadyDecided, c.id, c.decision)
	}
	current := NewScoreBreakdown()
	if c.score != nil {
		current = *c.score
	}

	submitted, outcome := current.Submit(now)
	if outcome == SubmitOutcomeAlreadySubmitted {
		return c, outcome, nil
	}

	next := c.touch(now)
	next.score = &submitted
	next.domainEvents = append(next.domainEvents, event.NewScoreSubmitted(
		c.id, submitted.Overall(), submitted.BureauScore(), now,
	))
	return next, outcome, nil
}

func (c VerificationCase) updateScore(now time.Time, fn func(ScoreBreakdown) (ScoreBreakdown, error)) (VerificationCase, error) {
	if c.score != nil && c.score.IsSubmitted() {
		return c, fmt.Errorf("%w: case %s", valueobject.ErrScoreImmutable, c.id)
	}
	if c.decision.IsFinal() {
		return c, fmt.Errorf("%w: case %s is %s", valueobject.ErrCaseAlreadyDecided, c.id, c.decision)
	}
	current := NewScoreBreakdown()
	if c.score != nil {
		current = *c.score
	}
	updated, err := fn(current)
	if err != nil {
		return c, err
	}
	next := c.touch(now)
	next.score = &updated
	return next, nil
}

// ---------------------------------------------------------------------------
// Decisions
// ---------------------------------------------------------------------------

// Approve requires every item verified and, when the case carries or needs a
// scorecard, that scorecard submitted.
func (c VerificationCase) Approve(notes string, now time.Time) (VerificationCase, error) {
	if c.decision.IsFinal() {
		return c, fmt.Errorf("%w: case %s is %s", valueobject.ErrCaseAlreadyDecided, c.id, c.decision)
	}
	if !c.AllItemsVerified() {
		return c, fmt.Errorf("%w: %d of %d items verified",
			valueobject.ErrApprovalPreconditionUnmet, c.verifiedCount(), len(c.items))
	}
	if c.score == nil && c.subject.RequiresScore() {
		return c, fmt.Errorf("%w: %s case requires a submitted score", valueobject.ErrApprovalPreconditionUnmet, c.subject)
	}
	if c.score != nil && !c.score.IsSubmitted() {
		return c, fmt.Errorf("%w: score not submitted", valueobject.ErrApprovalPreconditionUnmet)
	}

	next := c.touch(now)
	next.decision = valueobject.DecisionApproved
	next.decisionNotes = notes
	at := now
	next.decidedAt = &at

	var bureau *int
	if c.score != nil {
		b := c.score.BureauScore()
		bureau = &b
	}
	next.domainEvents = append(next.domainEvents, event.NewVerificationCaseApproved(
		c.id, c.subject.String(), c.applicationID, notes, bureau, now,
	))
	return next, nil
}

// Reject closes the case with a reason from the subject type's closed set.
// Nothing on the case can change afterwards.
func (c VerificationCase) Reject(reason valueobject.RejectionReason, notes string, now time.Time) (VerificationCase, error) {
	if c.decision.IsFinal() {
		return c, fmt.Errorf("%w: case %s is %s", valueobject.ErrCaseAlreadyDecided, c.id, c.decision)
	}
	if err := valueobject.ValidateRejectionReason(c.subject, reason); err != nil {
		return c, err
	}

	next := c.touch(now)
	next.decision = valueobject.DecisionRejected
	next.rejectionReason = reason
	next.decisionNotes = notes
	at := now
	next.decidedAt = &at
	next.domainEvents = append(next.domainEvents, event.NewVerificationCaseRejected(
		c.id, c.subject.String(), c.applicationID, string(reason), notes, now,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// CategoryProgress is the rounded percentage of verified items in category.
// A category without items reports 0.
func (c VerificationCase) CategoryProgress(category valueobject.DocumentCategory) int {
	total, verified := 0, 0
	for _, it := range c.items {
		if !it.category.Equal(category) {
			continue
		}
		total++
		if it.status.Equal(valueobject.ItemStatusVerified) {
			verified++
		}
	}
	return percent(verified, total)
}

// Progress reports CategoryProgress for every category present on the case.
func (c VerificationCase) Progress() map[valueobject.DocumentCategory]int {
	out := make(map[valueobject.DocumentCategory]int)
	for _, it := range c.items {
		if _, ok := out[it.category]; !ok {
			out[it.category] = c.CategoryProgress(it.category)
		}
	}
	return out
}

// OverallProgress is the rounded percentage of verified items across the case.
func (c VerificationCase) OverallProgress() int {
	return percent(c.verifiedCount(), len(c.items))
}

// AllItemsVerified reports whether every item has been verified.
func (c VerificationCase) AllItemsVerified() bool {
	return c.verifiedCount() == len(c.items)
}

func (c VerificationCase) verifiedCount() int {
	n := 0
	for _, it := range c.items {
		if it.status.Equal(valueobject.ItemStatusVerified) {
			n++
		}
	}
	return n
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// ---------------------------------------------------------------------------
// Decision record
// ---------------------------------------------------------------------------

// ScoreSummary is the serialisable view of a ScoreBreakdown.
type ScoreSummary struct {
	IncomeStability   int  `json:"income_stability"`
	ExistingEMIBurden int  `json:"existing_emi_burden"`
	EmploymentType    int  `json:"employment_type"`
	DocumentQuality   int  `json:"document_quality"`
	Overall           int  `json:"overall"`
	BureauScore       int  `json:"bureau_score"`
	Submitted         bool `json:"submitted"`
}

// SummarizeScore flattens a breakdown for output.
func SummarizeScore(s ScoreBreakdown) ScoreSummary {
	return ScoreSummary{
		IncomeStability:   s.Component(ComponentIncomeStability),
		ExistingEMIBurden: s.Component(ComponentExistingEMIBurden),
		EmploymentType:    s.Component(ComponentEmploymentType),
		DocumentQuality:   s.Component(ComponentDocumentQuality),
		Overall:           s.Overall(),
		BureauScore:       s.BureauScore(),
		Submitted:         s.IsSubmitted(),
	}
}

// DecisionRecord is the artefact handed to downstream collaborators once a
// case has been decided.
type DecisionRecord struct {
	CaseID          string        `json:"case_id"`
	ApplicationID   string        `json:"application_id,omitempty"`
	SubjectType     string        `json:"subject_type"`
	Decision        string        `json:"decision"`
	ScoreBreakdown  *ScoreSummary `json:"score_breakdown,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// DecisionRecord builds the record for the case's current decision. For an
// undecided case the timestamp is the last update.
func (c VerificationCase) DecisionRecord() DecisionRecord {
	rec := DecisionRecord{
		CaseID:          c.id,
		ApplicationID:   c.applicationID,
		SubjectType:     c.subject.String(),
		Decision:        c.decision.String(),
		RejectionReason: string(c.rejectionReason),
		Notes:           c.decisionNotes,
		Timestamp:       c.updatedAt,
	}
	if c.decidedAt != nil {
		rec.Timestamp = *c.decidedAt
	}
	if c.score != nil {
		s := SummarizeScore(*c.score)
		rec.ScoreBreakdown = &s
	}
	return rec
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c VerificationCase) ID() string                                   { return c.id }
func (c VerificationCase) ApplicationID() string                        { return c.applicationID }
func (c VerificationCase) SubjectType() valueobject.SubjectType         { return c.subject }
func (c VerificationCase) Decision() valueobject.CaseDecision           { return c.decision }
func (c VerificationCase) DecisionNotes() string                        { return c.decisionNotes }
func (c VerificationCase) RejectionReason() valueobject.RejectionReason { return c.rejectionReason }
func (c VerificationCase) DecidedAt() *time.Time                        { return c.decidedAt }
func (c VerificationCase) Version() int                                 { return c.version }
func (c VerificationCase) CreatedAt() time.Time                         { return c.createdAt }
func (c VerificationCase) UpdatedAt() time.Time                         { return c.updatedAt }
func (c VerificationCase) DomainEvents() []event.DomainEvent            { return c.domainEvents }

// Items returns a copy of the case's items in their original order.
func (c VerificationCase) Items() []VerificationItem {
	out := make([]VerificationItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item looks up an item by name.
func (c VerificationCase) Item(name string) (VerificationItem, bool) {
	idx := c.itemIndex(name)
	if idx < 0 {
		return VerificationItem{}, false
	}
	return c.items[idx], true
}

// Score returns the case's scorecard, if any.
func (c VerificationCase) Score() (ScoreBreakdown, bool) {
	if c.score == nil {
		return ScoreBreakdown{}, false
	}
	return *c.score, true
}

// ClearEvents returns a copy with an empty event list (call after publishing).
func (c VerificationCase) ClearEvents() VerificationCase {
	next := c
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (c VerificationCase) touch(now time.Time) VerificationCase {
	next := c
	next.updatedAt = now
	next.version++
	next.domainEvents = copyEvents(c.domainEvents)
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
