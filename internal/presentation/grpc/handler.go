package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/pkg/auth"
)

// UseCase is the shape every application use case exposes.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// UseCases groups the operations served by LoanLifecycleHandler.
type UseCases struct {
	StartApplication     UseCase[dto.StartApplicationRequest, dto.ApplicationDraftResponse]
	GetApplicationDraft  UseCase[dto.GetApplicationDraftRequest, dto.ApplicationDraftResponse]
	UpdateApplication    UseCase[dto.UpdateApplicationRequest, dto.ApplicationDraftResponse]
	NavigateApplication  UseCase[dto.NavigateApplicationRequest, dto.ApplicationDraftResponse]
	PreviewLoan          UseCase[dto.PreviewLoanRequest, dto.LoanPreviewResponse]
	TrackApplication     UseCase[dto.TrackApplicationRequest, dto.TrackApplicationResponse]
	OpenVerificationCase UseCase[dto.OpenVerificationCaseRequest, dto.VerificationCaseResponse]
	GetVerificationCase  UseCase[dto.GetVerificationCaseRequest, dto.VerificationCaseResponse]
	ReviewItem           UseCase[dto.ReviewItemRequest, dto.VerificationCaseResponse]
	ScoreCase            UseCase[dto.ScoreCaseRequest, dto.ScoreCaseResponse]
	DecideCase           UseCase[dto.DecideCaseRequest, dto.DecisionRecordResponse]
	DecideSanction       UseCase[dto.DecideSanctionRequest, dto.SanctionResponse]
	AdvanceSanction      UseCase[dto.AdvanceSanctionRequest, dto.SanctionResponse]
	DisburseLoan         UseCase[dto.DisburseLoanRequest, dto.DisburseLoanResponse]
	MakePayment          UseCase[dto.MakePaymentRequest, dto.MakePaymentResponse]
	GetLoan              UseCase[dto.GetLoanRequest, dto.LoanResponse]
}

// LoanLifecycleHandler implements LoanLifecycleServiceServer on top of the use cases.
type LoanLifecycleHandler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewLoanLifecycleHandler creates a new handler with all use-case dependencies.
func NewLoanLifecycleHandler(uc UseCases, logger *slog.Logger) *LoanLifecycleHandler {
	return &LoanLifecycleHandler{uc: uc, logger: logger}
}

var _ LoanLifecycleServiceServer = (*LoanLifecycleHandler)(nil)

func (h *LoanLifecycleHandler) StartApplication(ctx context.Context, req *dto.StartApplicationRequest) (*dto.ApplicationDraftResponse, error) {
	return execute(ctx, h.logger, h.uc.StartApplication, req)
}

func (h *LoanLifecycleHandler) GetApplicationDraft(ctx context.Context, req *dto.GetApplicationDraftRequest) (*dto.ApplicationDraftResponse, error) {
	return execute(ctx, h.logger, h.uc.GetApplicationDraft, req)
}

func (h *LoanLifecycleHandler) UpdateApplication(ctx context.Context, req *dto.UpdateApplicationRequest) (*dto.ApplicationDraftResponse, error) {
	return execute(ctx, h.logger, h.uc.UpdateApplication, req)
}

func (h *LoanLifecycleHandler) NavigateApplication(ctx context.Context, req *dto.NavigateApplicationRequest) (*dto.ApplicationDraftResponse, error) {
	return execute(ctx, h.logger, h.uc.NavigateApplication, req)
}

// PreviewLoan computes EMI and eligibility without touching any draft.
func (h *LoanLifecycleHandler) PreviewLoan(ctx context.Context, req *dto.PreviewLoanRequest) (*dto.LoanPreviewResponse, error) {
	return execute(ctx, h.logger, h.uc.PreviewLoan, req)
}

func (h *LoanLifecycleHandler) TrackApplication(ctx context.Context, req *dto.TrackApplicationRequest) (*dto.TrackApplicationResponse, error) {
	return execute(ctx, h.logger, h.uc.TrackApplication, req)
}

func (h *LoanLifecycleHandler) OpenVerificationCase(ctx context.Context, req *dto.OpenVerificationCaseRequest) (*dto.VerificationCaseResponse, error) {
	return execute(ctx, h.logger, h.uc.OpenVerificationCase, req)
}

func (h *LoanLifecycleHandler) GetVerificationCase(ctx context.Context, req *dto.GetVerificationCaseRequest) (*dto.VerificationCaseResponse, error) {
	return execute(ctx, h.logger, h.uc.GetVerificationCase, req)
}

func (h *LoanLifecycleHandler) ReviewItem(ctx context.Context, req *dto.ReviewItemRequest) (*dto.VerificationCaseResponse, error) {
	return execute(ctx, h.logger, h.uc.ReviewItem, req)
}

func (h *LoanLifecycleHandler) ScoreCase(ctx context.Context, req *dto.ScoreCaseRequest) (*dto.ScoreCaseResponse, error) {
	return execute(ctx, h.logger, h.uc.ScoreCase, req)
}

func (h *LoanLifecycleHandler) DecideCase(ctx context.Context, req *dto.DecideCaseRequest) (*dto.DecisionRecordResponse, error) {
	return execute(ctx, h.logger, h.uc.DecideCase, req)
}

// DecideSanction records the caller as the approver. Only admins may take the
// admin stage.
func (h *LoanLifecycleHandler) DecideSanction(ctx context.Context, req *dto.DecideSanctionRequest) (*dto.SanctionResponse, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no claims in context")
	}
	if req.Stage == dto.SanctionStageAdmin && !claims.HasRole(auth.RoleAdmin) {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}
	req.ApproverID = claims.UserID.String()
	return execute(ctx, h.logger, h.uc.DecideSanction, req)
}

func (h *LoanLifecycleHandler) AdvanceSanction(ctx context.Context, req *dto.AdvanceSanctionRequest) (*dto.SanctionResponse, error) {
	return execute(ctx, h.logger, h.uc.AdvanceSanction, req)
}

func (h *LoanLifecycleHandler) DisburseLoan(ctx context.Context, req *dto.DisburseLoanRequest) (*dto.DisburseLoanResponse, error) {
	return execute(ctx, h.logger, h.uc.DisburseLoan, req)
}

func (h *LoanLifecycleHandler) MakePayment(ctx context.Context, req *dto.MakePaymentRequest) (*dto.MakePaymentResponse, error) {
	return execute(ctx, h.logger, h.uc.MakePayment, req)
}

func (h *LoanLifecycleHandler) GetLoan(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanResponse, error) {
	return execute(ctx, h.logger, h.uc.GetLoan, req)
}

func execute[Req, Resp any](ctx context.Context, logger *slog.Logger, uc UseCase[Req, Resp], req *Req) (*Resp, error) {
	resp, err := uc.Execute(ctx, *req)
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			logger.ErrorContext(ctx, "use case failed", "error", err)
		}
		return nil, st
	}
	return &resp, nil
}
