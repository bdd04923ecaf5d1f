package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
)

// Login checks the credentials and issues a bearer token carrying id and role.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.LoginResponse{}, errs.ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Debug("password mismatch", zap.String("username", req.Username))
		return model.LoginResponse{}, errs.ErrInvalidCredentials
	}
	if s.tokens == nil {
		return model.LoginResponse{}, errors.New("token issuer is not configured")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return model.LoginResponse{}, errors.Wrap(err, "issue token")
	}
	user.PasswordHash = ""
	return model.LoginResponse{Token: token, User: user}, nil
}
