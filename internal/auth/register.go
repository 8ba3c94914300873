package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/internal/users"
	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/security"
)

const tempPasswordLength = 16

// RegisterService creates operator accounts. Only owners may call it; the
// check lives here as well as at the router so a bug in the HTTP wiring
// cannot open account creation to staff.
type RegisterService interface {
	Register(ctx context.Context, actor Actor, req RegisterStaffRequest) (*RegisterStaffResponse, error)
}

// Actor identifies the authenticated caller for owner-gated operations.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams names the dependencies for account registration. The
// repo factory defaults to the GORM-backed users repository.
type RegisterServiceParams struct {
	TxRunner        txRunner
	Hasher          passwordHasher
	Audit           audit.Recorder
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
}

type registerService struct {
	tx       txRunner
	hasher   passwordHasher
	audit    audit.Recorder
	userRepo func(tx *gorm.DB) registerUserRepository
}

// NewRegisterService builds the owner-only registration service.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:       params.TxRunner,
		hasher:   params.Hasher,
		audit:    params.Audit,
		userRepo: factory,
	}, nil
}

func (s *registerService) Register(ctx context.Context, actor Actor, req RegisterStaffRequest) (*RegisterStaffResponse, error) {
	if actor.Role != enums.UserRoleOwner {
		return nil, apperrors.New(apperrors.CodeForbidden, "only owners may create accounts")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "full_name is required")
	}
	role, err := enums.ParseUserRole(strings.TrimSpace(req.Role))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "role must be owner or staff")
	}

	password := req.Password
	tempPassword := ""
	if password == "" {
		tempPassword, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "generate temp password")
		}
		password = tempPassword
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
	}

	var created users.UserResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return apperrors.New(apperrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			Role:         role,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "create user")
		}

		created = users.ToResponse(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Entry{
			ActorUserID: actor.UserID,
			Action:      enums.AuditActionUserRegistered,
			EntityType:  "user",
			EntityID:    created.ID,
			Detail: map[string]any{
				"email": created.Email,
				"role":  created.Role.String(),
			},
		})
	}

	return &RegisterStaffResponse{
		User:         created,
		TempPassword: tempPassword,
	}, nil
}
