package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/security"
)

type UserStore interface {
	GetByName(ctx context.Context, name string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	Issue(name, role string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
	cfg   config.Config
}

func NewAuthHandler(users UserStore, jwt TokenIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
		cfg:   cfg,
	}
}

// SignUp creates a user and returns a session token. All checks run before
// the single insert, so no failure path leaves a partial write; the store's
// unique constraints remain the backstop for concurrent duplicates.
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	_, err := h.users.GetByName(cctx, req.Username)

	if err == nil {
		RespondConflict(ctx, "duplicate_username", "Username is already in use.")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	_, err = h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondConflict(ctx, "duplicate_email", "Email is already in use.")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// role resolution happens exactly once, here

	role := user.RoleUser

	if req.IsAdmin {
		if req.AdminToken != h.cfg.AdminSignupToken {
			RespondBadRequest(ctx, "invalid_admin_secret", "Admin signup token is incorrect.", nil)
			return
		}

		role = user.RoleAdmin
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()

	u, err := h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Name:         req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		// the pre-checks raced a concurrent signup
		switch {
		case errors.Is(err, user.ErrNameTaken):
			RespondConflict(ctx, "duplicate_username", "Username is already in use.")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "duplicate_email", "Email is already in use.")
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	token, err := h.jwt.Issue(u.Name, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unknown_email", "No account with this email.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "password_mismatch", "Password is incorrect.")
		return
	}

	// role comes verbatim from the stored row, never re-derived
	token, err := h.jwt.Issue(foundUser.Name, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
