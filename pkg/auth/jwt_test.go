package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "loan-lifecycle-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	tokenString, err := svc.GenerateToken(userID, []string{RoleReviewer, RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{RoleReviewer, RoleAdmin}, claims.Roles)
	assert.Equal(t, "loan-lifecycle-test", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Issuer: "x"})
	assert.Error(t, err)
}

func TestValidateToken_Rejections(t *testing.T) {
	expired, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "i", Expiration: -time.Hour})
	require.NoError(t, err)
	other, err := NewJWTService(JWTConfig{Secret: "other", Issuer: "i", Expiration: time.Hour})
	require.NoError(t, err)
	wrongIssuer, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "elsewhere", Expiration: time.Hour})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "i", Expiration: time.Hour})
	require.NoError(t, err)

	tests := []struct {
		name   string
		issuer *JWTService
	}{
		{name: "expired", issuer: expired},
		{name: "bad signature", issuer: other},
		{name: "wrong issuer", issuer: wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.issuer.GenerateToken(uuid.New(), []string{RoleApplicant})
			require.NoError(t, err)

			_, err = validator.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func rsaKeyPEM(t *testing.T) (privatePEM, publicPEM string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	privatePEM = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	publicPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub}))
	return privatePEM, publicPEM
}

func TestRSA_IssuerAndValidatorModes(t *testing.T) {
	privatePEM, publicPEM := rsaKeyPEM(t)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: privatePEM, Issuer: "gateway"})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: publicPEM, Issuer: "gateway"})
	require.NoError(t, err)

	userID := uuid.New()
	token, err := issuer.GenerateToken(userID, []string{RoleReviewer})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = validator.GenerateToken(userID, nil)
	assert.ErrorIs(t, err, ErrSigningUnavailable)
}

func TestRSAValidator_RejectsHMACToken(t *testing.T) {
	_, publicPEM := rsaKeyPEM(t)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: publicPEM})
	require.NoError(t, err)

	// An HS256 token keyed with the public key text must not pass as RS256.
	forger, err := NewJWTService(JWTConfig{Secret: publicPEM})
	require.NoError(t, err)
	token, err := forger.GenerateToken(uuid.New(), []string{RoleAdmin})
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_SubjectFallback(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "loan-lifecycle-test",
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "loan-lifecycle-test",
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("test-secret-key-for-unit-tests"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoadKeyFromFile(t *testing.T) {
	_, publicPEM := rsaKeyPEM(t)
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, []byte(publicPEM), 0o600))

	data, err := LoadKeyFromFile(path)
	require.NoError(t, err)
	_, err = NewJWTService(JWTConfig{PublicKeyPEM: string(data)})
	assert.NoError(t, err)

	_, err = LoadKeyFromFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	claims := Claims{Roles: []string{RoleReviewer}}

	assert.True(t, claims.HasRole(RoleReviewer))
	assert.False(t, claims.HasRole(RoleApplicant))
	assert.False(t, claims.HasRole("nonexistent"))
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	expected := &Claims{UserID: uuid.New(), Roles: []string{RoleApplicant}}
	got, ok := ClaimsFromContext(ContextWithClaims(context.Background(), expected))
	require.True(t, ok)
	assert.Same(t, expected, got)
}

func okHandler(ctx context.Context, _ any) (any, error) {
	claims, _ := ClaimsFromContext(ctx)
	return claims, nil
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	intercept := UnaryAuthInterceptor(svc, []string{"/svc/Public"})
	token, err := svc.GenerateToken(uuid.New(), []string{RoleApplicant})
	require.NoError(t, err)

	t.Run("skipped method", func(t *testing.T) {
		_, err := intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Public"}, okHandler)
		assert.NoError(t, err)
	})

	t.Run("missing header", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Private"}, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic dXNlcjpwdw=="))
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Private"}, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Private"}, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer "+token))
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Private"}, okHandler)
		assert.NoError(t, err)
	})

	t.Run("bearer token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
		resp, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Private"}, okHandler)
		require.NoError(t, err)
		claims, ok := resp.(*Claims)
		require.True(t, ok)
		assert.True(t, claims.HasRole(RoleApplicant))
	})
}

func TestRequireRoles(t *testing.T) {
	intercept := RequireRoles(map[string][]string{"/svc/Decide": {RoleReviewer, RoleAdmin}})
	applicant := ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleApplicant}})
	reviewer := ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleReviewer}})

	_, err := intercept(applicant, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Track"}, okHandler)
	assert.NoError(t, err, "unguarded methods pass")

	_, err = intercept(applicant, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Decide"}, okHandler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = intercept(reviewer, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Decide"}, okHandler)
	assert.NoError(t, err)

	_, err = intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Decide"}, okHandler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
