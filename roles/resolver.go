package roles

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/jrsteele09/canvas-dashboard/lms"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Directory is the slice of the LMS client the resolver needs
type Directory interface {
	SearchAccountUsers(ctx context.Context, accountID, term string) ([]lms.User, error)
	GetUserEnrollments(ctx context.Context, userID string) ([]lms.Enrollment, error)
}

// Identity is who a login email resolved to
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Resolver maps an email address to an LMS user and infers their role
type Resolver struct {
	directory Directory
	accountID string
}

func NewResolver(directory Directory, accountID string) *Resolver {
	if accountID == "" {
		accountID = "1"
	}
	return &Resolver{directory: directory, accountID: accountID}
}

// Resolve searches the account for an exact login, email or pseudonym match and
// classifies the match by its enrollments. Upstream failures are returned as
// *lms.APIError so callers can relay status and body. The email is matched as
// given, whitespace included.
func (r *Resolver) Resolve(ctx context.Context, email string) (Identity, error) {
	if strings.TrimSpace(email) == "" {
		return Identity{}, apperrors.ErrEmailRequired
	}

	candidates, err := r.directory.SearchAccountUsers(ctx, r.accountID, email)
	if err != nil {
		return Identity{}, errors.Wrap(err, "[Resolve] user search failed")
	}

	var user *lms.User
	for i := range candidates {
		if candidates[i].Matches(email) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		log.Info().Str("email", email).Int("candidates", len(candidates)).Msg("no exact user match")
		return Identity{}, apperrors.Wrapf(apperrors.ErrUserNotFound, "[Resolve] %s", email)
	}

	userID := strconv.FormatInt(user.ID, 10)
	enrollments, err := r.directory.GetUserEnrollments(ctx, userID)
	if err != nil {
		return Identity{}, errors.Wrap(err, "[Resolve] enrollment lookup failed")
	}

	identity := Identity{
		ID:    userID,
		Name:  user.Name,
		Email: user.Email,
		Role:  RoleFromEnrollments(enrollments),
	}
	if identity.Email == "" {
		identity.Email = email
	}
	log.Debug().Str("user_id", identity.ID).Str("role", identity.Role.String()).Msg("identity resolved")
	return identity, nil
}
