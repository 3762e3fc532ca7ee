package grpc

// proto.go hand-writes the service descriptor for loanlifecycle.v1.LoanLifecycleService.
// Messages travel through the JSON codec, so the dto types double as wire messages.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "loanlifecycle.v1.LoanLifecycleService"

// Full method names, used by the auth policy.
const (
	MethodStartApplication     = "/" + ServiceName + "/StartApplication"
	MethodGetApplicationDraft  = "/" + ServiceName + "/GetApplicationDraft"
	MethodUpdateApplication    = "/" + ServiceName + "/UpdateApplication"
	MethodNavigateApplication  = "/" + ServiceName + "/NavigateApplication"
	MethodPreviewLoan          = "/" + ServiceName + "/PreviewLoan"
	MethodTrackApplication     = "/" + ServiceName + "/TrackApplication"
	MethodOpenVerificationCase = "/" + ServiceName + "/OpenVerificationCase"
	MethodGetVerificationCase  = "/" + ServiceName + "/GetVerificationCase"
	MethodReviewItem           = "/" + ServiceName + "/ReviewItem"
	MethodScoreCase            = "/" + ServiceName + "/ScoreCase"
	MethodDecideCase           = "/" + ServiceName + "/DecideCase"
	MethodDecideSanction       = "/" + ServiceName + "/DecideSanction"
	MethodAdvanceSanction      = "/" + ServiceName + "/AdvanceSanction"
	MethodDisburseLoan         = "/" + ServiceName + "/DisburseLoan"
	MethodMakePayment          = "/" + ServiceName + "/MakePayment"
	MethodGetLoan              = "/" + ServiceName + "/GetLoan"
)

// LoanLifecycleServiceServer is the server API for LoanLifecycleService.
type LoanLifecycleServiceServer interface {
	StartApplication(context.Context, *dto.StartApplicationRequest) (*dto.ApplicationDraftResponse, error)
	GetApplicationDraft(context.Context, *dto.GetApplicationDraftRequest) (*dto.ApplicationDraftResponse, error)
	UpdateApplication(context.Context, *dto.UpdateApplicationRequest) (*dto.ApplicationDraftResponse, error)
	NavigateApplication(context.Context, *dto.NavigateApplicationRequest) (*dto.ApplicationDraftResponse, error)
	PreviewLoan(context.Context, *dto.PreviewLoanRequest) (*dto.LoanPreviewResponse, error)
	TrackApplication(context.Context, *dto.TrackApplicationRequest) (*dto.TrackApplicationResponse, error)
	OpenVerificationCase(context.Context, *dto.OpenVerificationCaseRequest) (*dto.VerificationCaseResponse, error)
	GetVerificationCase(context.Context, *dto.GetVerificationCaseRequest) (*dto.VerificationCaseResponse, error)
	ReviewItem(context.Context, *dto.ReviewItemRequest) (*dto.VerificationCaseResponse, error)
	ScoreCase(context.Context, *dto.ScoreCaseRequest) (*dto.ScoreCaseResponse, error)
	DecideCase(context.Context, *dto.DecideCaseRequest) (*dto.DecisionRecordResponse, error)
	DecideSanction(context.Context, *dto.DecideSanctionRequest) (*dto.SanctionResponse, error)
	AdvanceSanction(context.Context, *dto.AdvanceSanctionRequest) (*dto.SanctionResponse, error)
	DisburseLoan(context.Context, *dto.DisburseLoanRequest) (*dto.DisburseLoanResponse, error)
	MakePayment(context.Context, *dto.MakePaymentRequest) (*dto.MakePaymentResponse, error)
	GetLoan(context.Context, *dto.GetLoanRequest) (*dto.LoanResponse, error)
}

// RegisterLoanLifecycleServiceServer registers srv with the gRPC server.
func RegisterLoanLifecycleServiceServer(s grpclib.ServiceRegistrar, srv LoanLifecycleServiceServer) {
	s.RegisterService(&loanLifecycleServiceDesc, srv)
}

type server = LoanLifecycleServiceServer

var loanLifecycleServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LoanLifecycleServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "StartApplication", Handler: unary(MethodStartApplication, server.StartApplication)},
		{MethodName: "GetApplicationDraft", Handler: unary(MethodGetApplicationDraft, server.GetApplicationDraft)},
		{MethodName: "UpdateApplication", Handler: unary(MethodUpdateApplication, server.UpdateApplication)},
		{MethodName: "NavigateApplication", Handler: unary(MethodNavigateApplication, server.NavigateApplication)},
		{MethodName: "PreviewLoan", Handler: unary(MethodPreviewLoan, server.PreviewLoan)},
		{MethodName: "TrackApplication", Handler: unary(MethodTrackApplication, server.TrackApplication)},
		{MethodName: "OpenVerificationCase", Handler: unary(MethodOpenVerificationCase, server.OpenVerificationCase)},
		{MethodName: "GetVerificationCase", Handler: unary(MethodGetVerificationCase, server.GetVerificationCase)},
		{MethodName: "ReviewItem", Handler: unary(MethodReviewItem, server.ReviewItem)},
		{MethodName: "ScoreCase", Handler: unary(MethodScoreCase, server.ScoreCase)},
		{MethodName: "DecideCase", Handler: unary(MethodDecideCase, server.DecideCase)},
		{MethodName: "DecideSanction", Handler: unary(MethodDecideSanction, server.DecideSanction)},
		{MethodName: "AdvanceSanction", Handler: unary(MethodAdvanceSanction, server.AdvanceSanction)},
		{MethodName: "DisburseLoan", Handler: unary(MethodDisburseLoan, server.DisburseLoan)},
		{MethodName: "MakePayment", Handler: unary(MethodMakePayment, server.MakePayment)},
		{MethodName: "GetLoan", Handler: unary(MethodGetLoan, server.GetLoan)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "loanlifecycle/v1/loan_lifecycle.proto",
}

// unary builds the generated-style method handler for one RPC.
func unary[Req, Resp any](
	fullMethod string,
	call func(server, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(server), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(server), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
