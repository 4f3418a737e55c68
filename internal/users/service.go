package users

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Service handles registration and credential checks.
type Service struct {
	repo     Repository
	hashCost int
}

// NewService builds Service instance. A non-positive cost selects
// bcrypt.DefaultCost.
func NewService(repo Repository, hashCost int) *Service {
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, hashCost: hashCost}
}

// Register stores a new user unless the username or email is taken.
func (s *Service) Register(ctx context.Context, in SignupInput) (*User, error) {
	if err := validateSignup(in); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(in.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates username/password credentials. It returns
// shared.ErrNotFound for an unknown username and shared.ErrInvalidCredentials
// for a password mismatch.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "user not found")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// List returns all users without password hashes.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// passwordDigest keeps bcrypt input at 44 bytes so passwords of any length
// stay under its 72 byte limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func validateSignup(in SignupInput) error {
	fields := []struct{ name, value string }{
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
		{"phone", in.Phone},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return shared.Errorf(shared.ErrValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
