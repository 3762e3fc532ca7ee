package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ScoreBreakdown – manual reviewer scorecard
// ---------------------------------------------------------------------------

const (
	// MaxComponentScore bounds each of the four sub-scores.
	MaxComponentScore = 25

	bureauFloor   = 300
	bureauCeiling = 900
)

// ScoreComponent names one of the four sub-scores.
type ScoreComponent string

const (
	ComponentIncomeStability   ScoreComponent = "income_stability"
	ComponentExistingEMIBurden ScoreComponent = "existing_emi_burden"
	ComponentEmploymentType    ScoreComponent = "employment_type"
	ComponentDocumentQuality   ScoreComponent = "document_quality"
)

// ScoreComponents lists the components in display order.
func ScoreComponents() []ScoreComponent {
	return []ScoreComponent{
		ComponentIncomeStability,
		ComponentExistingEMIBurden,
		ComponentEmploymentType,
		ComponentDocumentQuality,
	}
}

// SubmitOutcome reports what Submit did.
type SubmitOutcome int

const (
	SubmitOutcomeSubmitted SubmitOutcome = iota
	SubmitOutcomeAlreadySubmitted
)

// ScoreBreakdown is editable until submitted and frozen afterwards. Overall
// and the bureau-equivalent score are always derived, never stored.
type ScoreBreakdown struct {
	incomeStability   int
	existingEMIBurden int
	employmentType    int
	documentQuality   int
	submitted         bool
	submittedAt       *time.Time
}

// NewScoreBreakdown returns an editable breakdown with every component at zero.
func NewScoreBreakdown() ScoreBreakdown {
	return ScoreBreakdown{}
}

// ReconstructScoreBreakdown rebuilds a breakdown from persistence. Values are
// clamped on the way in.
func ReconstructScoreBreakdown(income, emiBurden, employment, documents int, submittedAt *time.Time) ScoreBreakdown {
	return ScoreBreakdown{
		incomeStability:   clampComponent(income),
		existingEMIBurden: clampComponent(emiBurden),
		employmentType:    clampComponent(employment),
		documentQuality:   clampComponent(documents),
		submitted:         submittedAt != nil,
		submittedAt:       submittedAt,
	}
}

// WithComponent returns a copy with component set to value clamped to [0,25].
func (s ScoreBreakdown) WithComponent(component ScoreComponent, value int) (ScoreBreakdown, error) {
	if s.submitted {
		return s, valueobject.ErrScoreImmutable
	}
	next := s
	v := clampComponent(value)
	switch component {
	case ComponentIncomeStability:
		next.incomeStability = v
	case ComponentExistingEMIBurden:
		next.existingEMIBurden = v
	case ComponentEmploymentType:
		next.employmentType = v
	case ComponentDocumentQuality:
		next.documentQuality = v
	default:
		return s, fmt.Errorf("unknown score component %q", component)
	}
	return next, nil
}

// WithComponentInput is WithComponent for raw form input: anything that does
// not parse as a number counts as 0.
func (s ScoreBreakdown) WithComponentInput(component ScoreComponent, raw string) (ScoreBreakdown, error) {
	return s.WithComponent(component, parseComponentInput(raw))
}

// Submit freezes the breakdown. Submitting twice is a no-op reported as
// SubmitOutcomeAlreadySubmitted.
func (s ScoreBreakdown) Submit(now time.Time) (ScoreBreakdown, SubmitOutcome) {
	if s.submitted {
		return s, SubmitOutcomeAlreadySubmitted
	}
	next := s
	next.submitted = true
	at := now
	next.submittedAt = &at
	return next, SubmitOutcomeSubmitted
}

// Component returns the current value of one sub-score.
func (s ScoreBreakdown) Component(component ScoreComponent) int {
	switch component {
	case ComponentIncomeStability:
		return s.incomeStability
	case ComponentExistingEMIBurden:
		return s.existingEMIBurden
	case ComponentEmploymentType:
		return s.employmentType
	case ComponentDocumentQuality:
		return s.documentQuality
	default:
		return 0
	}
}

// Overall is the sum of the four components, 0..100.
func (s ScoreBreakdown) Overall() int {
	return s.incomeStability + s.existingEMIBurden + s.employmentType + s.documentQuality
}

// BureauScore maps Overall linearly onto the 300..900 bureau range.
func (s ScoreBreakdown) BureauScore() int {
	v := int(math.Round(bureauFloor + float64(s.Overall())/100*(bureauCeiling-bureauFloor)))
	return min(max(v, bureauFloor), bureauCeiling)
}

func (s ScoreBreakdown) IsSubmitted() bool       { return s.submitted }
func (s ScoreBreakdown) SubmittedAt() *time.Time { return s.submittedAt }

func clampComponent(v int) int {
	return min(max(v, 0), MaxComponentScore)
}

func parseComponentInput(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) || math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return MaxComponentScore
		}
		return 0
	}
	// Fractions arrive from number inputs; keep the whole part.
	if f > MaxComponentScore {
		return MaxComponentScore
	}
	if f < 0 {
		return 0
	}
	return int(f)
}
