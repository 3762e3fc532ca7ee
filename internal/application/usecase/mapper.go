package usecase

import (
	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/service"
)

func toDraftResponse(w model.ApplicationWizard, evaluator *service.EligibilityEvaluator) dto.ApplicationDraftResponse {
	a := w.Applicant()
	req := w.LoanRequest()
	c := w.Consents()

	resp := dto.ApplicationDraftResponse{
		ID:        w.ID(),
		LoanType:  w.LoanType().String(),
		Step:      int(w.Step()),
		StepTitle: w.Step().String(),
		Applicant: dto.ApplicantInput{
			FullName:                   a.FullName,
			Age:                        a.Age,
			EmploymentType:             a.EmploymentType.String(),
			MonthlyIncome:              a.MonthlyIncome,
			ExistingMonthlyObligations: a.ExistingMonthlyObligations,
		},
		LoanRequest: dto.LoanRequestInput{
			Principal:         req.Principal,
			AnnualRatePercent: req.AnnualRatePercent,
			TenureMonths:      req.TenureMonths,
		},
		Purpose:           w.Purpose(),
		Purposes:          w.LoanType().Purposes(),
		UploadedDocuments: w.UploadedDocuments(),
		MissingDocuments:  w.MissingDocuments(),
		Consents: dto.ConsentsInput{
			ConfirmInfo:    c.ConfirmInfo,
			AgreeTerms:     c.AgreeTerms,
			AuthorizeCheck: c.AuthorizeCheck,
		},
		View:        string(w.View()),
		Submitted:   w.IsSubmitted(),
		SubmittedAt: w.SubmittedAt(),
		UpdatedAt:   w.UpdatedAt(),
	}

	preview, err := evaluator.Preview(w, w.UpdatedAt())
	if err != nil {
		resp.PreviewError = err.Error()
		return resp
	}
	p := toPreviewResponse(preview, false)
	resp.Preview = &p
	return resp
}

func toPreviewResponse(p service.LoanPreview, includeSchedule bool) dto.LoanPreviewResponse {
	resp := dto.LoanPreviewResponse{
		MonthlyInstallment: p.Schedule.MonthlyInstallment(),
		TotalInterest:      p.Schedule.TotalInterest(),
		TotalPayable:       p.Schedule.TotalPayable(),
		Eligible:           p.Eligibility.Eligible,
		Headroom:           p.Eligibility.Headroom,
		Ceiling:            p.Eligibility.Ceiling,
	}
	if includeSchedule {
		rows := p.Schedule.Installments()
		resp.Schedule = make([]dto.InstallmentResponse, 0, len(rows))
		for _, r := range rows {
			resp.Schedule = append(resp.Schedule, toInstallmentResponse(r))
		}
	}
	return resp
}

func toInstallmentResponse(r model.Installment) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		Sequence:         r.Sequence,
		DueDate:          r.DueDate,
		Principal:        r.Principal,
		Interest:         r.Interest,
		Total:            r.Total,
		RemainingBalance: r.RemainingBalance,
	}
}

func toScoreResponse(s model.ScoreSummary) *dto.ScoreResponse {
	return &dto.ScoreResponse{
		IncomeStability:   s.IncomeStability,
		ExistingEMIBurden: s.ExistingEMIBurden,
		EmploymentType:    s.EmploymentType,
		DocumentQuality:   s.DocumentQuality,
		Overall:           s.Overall,
		BureauScore:       s.BureauScore,
		Submitted:         s.Submitted,
	}
}

func toCaseResponse(c model.VerificationCase) dto.VerificationCaseResponse {
	items := c.Items()
	resp := dto.VerificationCaseResponse{
		ID:              c.ID(),
		ApplicationID:   c.ApplicationID(),
		SubjectType:     c.SubjectType().String(),
		Items:           make([]dto.ItemResponse, 0, len(items)),
		Progress:        make(map[string]int),
		OverallProgress: c.OverallProgress(),
		Decision:        c.Decision().String(),
		DecisionNotes:   c.DecisionNotes(),
		RejectionReason: string(c.RejectionReason()),
		Version:         c.Version(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.ItemResponse{
			Name:       it.Name(),
			Category:   it.Category().String(),
			Status:     it.Status().String(),
			ReviewedAt: it.ReviewedAt(),
		})
	}
	for category, pct := range c.Progress() {
		resp.Progress[category.String()] = pct
	}
	if s, ok := c.Score(); ok {
		resp.Score = toScoreResponse(model.SummarizeScore(s))
	}
	return resp
}

func toDecisionRecordResponse(r model.DecisionRecord) dto.DecisionRecordResponse {
	resp := dto.DecisionRecordResponse{
		CaseID:          r.CaseID,
		ApplicationID:   r.ApplicationID,
		SubjectType:     r.SubjectType,
		Decision:        r.Decision,
		RejectionReason: r.RejectionReason,
		Notes:           r.Notes,
		Timestamp:       r.Timestamp,
	}
	if r.ScoreBreakdown != nil {
		resp.ScoreBreakdown = toScoreResponse(*r.ScoreBreakdown)
	}
	return resp
}

func toTrackResponse(applicationID string, status model.LifecycleStatus) dto.TrackApplicationResponse {
	stages := status.Timeline.Stages()
	resp := dto.TrackApplicationResponse{
		ApplicationID:      applicationID,
		Stages:             make([]dto.StageResponse, 0, len(stages)),
		LastCompletedIndex: status.Timeline.LastCompletedIndex(),
		Segments:           status.Timeline.Segments(),
		SanctionLetter: dto.SanctionLetterResponse{
			Ready:    status.SanctionLetter.Ready,
			FileName: status.SanctionLetter.FileName,
		},
	}
	for _, s := range stages {
		resp.Stages = append(resp.Stages, dto.StageResponse{
			Title:       s.Title,
			Status:      s.Status.String(),
			StatusLabel: s.Status.Label(),
			Note:        s.Note,
			At:          s.At,
		})
	}
	return resp
}

func toSanctionResponse(s model.Sanction) dto.SanctionResponse {
	return dto.SanctionResponse{
		ApplicationID:         s.ApplicationID(),
		Principal:             s.Principal(),
		Status:                s.Status().String(),
		RequiresAdminApproval: s.RequiresAdminApproval(),
		ManagerID:             s.ManagerID(),
		ManagerDecidedAt:      s.ManagerDecidedAt(),
		AdminID:               s.AdminID(),
		AdminDecidedAt:        s.AdminDecidedAt(),
		Notes:                 s.Notes(),
		LetterSentAt:          s.LetterSentAt(),
		SignedReceivedAt:      s.SignedReceivedAt(),
		DisbursedAt:           s.DisbursedAt(),
		UpdatedAt:             s.UpdatedAt(),
	}
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	req := l.Request()
	resp := dto.LoanResponse{
		ID:                 l.ID(),
		ApplicationID:      l.ApplicationID(),
		LoanType:           l.LoanType().String(),
		Status:             l.Status().String(),
		Principal:          req.Principal,
		AnnualRatePercent:  req.AnnualRatePercent,
		TenureMonths:       req.TenureMonths,
		MonthlyInstallment: l.MonthlyInstallment(),
		RemainingTenure:    l.RemainingTenure(),
		OutstandingBalance: l.OutstandingBalance(),
		RemainingAmount:    l.RemainingAmount(),
		TotalPaid:          l.TotalPaid(),
		NextPaymentDue:     l.NextPaymentDue(),
		DisbursedAt:        l.DisbursedAt(),
	}
	if next, ok := l.NextInstallment(); ok {
		row := toInstallmentResponse(next)
		resp.NextInstallment = &row
	}

	rows := l.Schedule().Installments()
	resp.Schedule = make([]dto.InstallmentResponse, 0, len(rows))
	for _, r := range rows {
		resp.Schedule = append(resp.Schedule, toInstallmentResponse(r))
	}

	payments := l.Payments()
	resp.Payments = make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			Sequence:     p.Sequence,
			Amount:       p.Amount,
			Principal:    p.Principal,
			Interest:     p.Interest,
			BalanceAfter: p.BalanceAfter,
			DueDate:      p.DueDate,
			PaidAt:       p.PaidAt,
		})
	}
	return resp
}
