package grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/loan-lifecycle/pkg/auth"
	"github.com/bibbank/loan-lifecycle/pkg/tlsutil"
)

// ServerConfig carries the transport options for the gRPC server.
type ServerConfig struct {
	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string
	TLSKeyFile  string
	// ClientCAFile additionally requires client certificates.
	ClientCAFile string
	Reflection   bool
}

// Server wraps a gRPC server with the loan lifecycle handler registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// reviewerMethods may only be called by reviewers or admins.
var reviewerMethods = []string{
	MethodOpenVerificationCase,
	MethodGetVerificationCase,
	MethodReviewItem,
	MethodScoreCase,
	MethodDecideCase,
}

// adminMethods move a sanctioned loan towards and through disbursement.
var adminMethods = []string{
	MethodAdvanceSanction,
	MethodDisburseLoan,
}

// RolePolicy maps guarded methods to the roles allowed to call them.
func RolePolicy() map[string][]string {
	policy := make(map[string][]string, len(reviewerMethods)+len(adminMethods)+2)
	for _, m := range reviewerMethods {
		policy[m] = []string{auth.RoleReviewer, auth.RoleAdmin}
	}
	for _, m := range adminMethods {
		policy[m] = []string{auth.RoleAdmin}
	}
	policy[MethodDecideSanction] = []string{auth.RoleManager, auth.RoleAdmin}
	policy[MethodMakePayment] = []string{auth.RoleApplicant, auth.RoleAdmin}
	return policy
}

// NewServer creates and configures the gRPC server.
func NewServer(cfg ServerConfig, handler LoanLifecycleServiceServer, logger *slog.Logger, jwtService *auth.JWTService) (*Server, error) {
	// Health checks and the public EMI preview need no token.
	authInterceptor := auth.UnaryAuthInterceptor(jwtService, []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
		MethodPreviewLoan,
	})

	serverOpts := []grpclib.ServerOption{
		grpclib.ChainUnaryInterceptor(
			TracingInterceptor(),
			LoggingInterceptor(logger),
			authInterceptor,
			auth.RequireRoles(RolePolicy()),
		),
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("grpc server tls: %w", err)
		}
		serverOpts = append(serverOpts, grpclib.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile, "mtls", cfg.ClientCAFile != "")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(gs)
	}

	RegisterLoanLifecycleServiceServer(gs, handler)

	return &Server{
		gs:     gs,
		health: healthSrv,
		logger: logger,
	}, nil
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service not serving and stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
