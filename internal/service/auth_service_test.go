package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/aera-issue-service/internal/config"
	"github.com/spec-kit/aera-issue-service/internal/domain"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

func newTestAuthService(users *memUserRepo) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			ManagerEmail:          "boss@aera.local",
		},
	}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users})
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "No Password",
		Email:    "np@aera.local",
		Username: "no_password",
		Role:     domain.RoleDataCollector,
	})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Odd Role",
		Email:    "odd@aera.local",
		Username: "odd_role",
		Password: "secret",
		Role:     domain.Role("janitor"),
	})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestRegisterManagerEmailGate(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		FullName: "Impostor",
		Email:    "someone@aera.local",
		Username: "impostor",
		Password: "secret",
		Role:     domain.RoleManager,
	})
	requireCode(t, err, "FORBIDDEN")

	// the configured address passes, case-insensitively
	user, err := svc.Register(ctx, RegisterInput{
		FullName: "The Boss",
		Email:    "Boss@AERA.local",
		Username: "the_boss",
		Password: "secret",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, user.Role)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	first := RegisterInput{
		FullName: "First",
		Email:    "first@aera.local",
		Username: "first_user",
		Password: "secret",
		Role:     domain.RoleDataCollector,
	}
	_, err := svc.Register(ctx, first)
	require.NoError(t, err)

	dupUsername := first
	dupUsername.Email = "other@aera.local"
	_, err = svc.Register(ctx, dupUsername)
	requireCode(t, err, "CONFLICT")

	dupEmail := first
	dupEmail.Username = "second_user"
	_, err = svc.Register(ctx, dupEmail)
	requireCode(t, err, "CONFLICT")
}

func TestRegisterTechnicianNormalizesSpecialty(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users)

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:  "Water Tech",
		Email:     "wt@aera.local",
		Username:  "water_tech",
		Password:  "secret",
		Role:      domain.RoleTechnician,
		Specialty: strPtr("  WATER "),
	})
	require.NoError(t, err)
	require.NotNil(t, user.Specialty)
	require.Equal(t, "water", *user.Specialty)
}

func TestRegisterIgnoresSpecialtyForNonTechnicians(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:  "Collector",
		Email:     "dc@aera.local",
		Username:  "collector",
		Password:  "secret",
		Role:      domain.RoleDataCollector,
		Specialty: strPtr("water"),
	})
	require.NoError(t, err)
	require.Nil(t, user.Specialty)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo())

	_, _, _, err := svc.Login(context.Background(), "ghost", "secret")
	requireCode(t, err, "NOT_FOUND")
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		FullName: "Collector",
		Email:    "dc@aera.local",
		Username: "collector",
		Password: "secret",
		Role:     domain.RoleDataCollector,
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "collector", "wrong")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestLoginIssuesRoleBearingToken(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		FullName:  "Water Tech",
		Email:     "wt@aera.local",
		Username:  "water_tech",
		Password:  "secret",
		Role:      domain.RoleTechnician,
		Specialty: strPtr("water"),
	})
	require.NoError(t, err)

	user, token, expiresAt, err := svc.Login(ctx, "water_tech", "secret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.False(t, expiresAt.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.UserID)
	require.Equal(t, domain.RoleTechnician, claims.Role)
	require.Equal(t, "water_tech", claims.Username)
	require.Equal(t, "Water Tech", claims.FullName)
	require.NotNil(t, claims.Specialty)
	require.Equal(t, "water", *claims.Specialty)
}
