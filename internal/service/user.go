package service

import (
	"context"

	"github.com/accessdeck/accessdeck/internal/models"
	"github.com/accessdeck/accessdeck/internal/repo"
)

// Profile returns the user record the /users/me endpoints render.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the username after re-checking uniqueness against
// every record, active or not.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, username string) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		existing, err := s.Repo.FindUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameTaken
		}
		user.Username = username
		if err := s.Repo.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Deactivate soft-deletes the account and revokes every active session.
func (s *AuthService) Deactivate(ctx context.Context, userID uint) (*Ack, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Transaction(ctx, func(tr *repo.GormRepo) error {
		if err := tr.DeactivateUser(ctx, user.ID); err != nil {
			return err
		}
		return tr.RevokeAllRefreshTokens(ctx, user.ID)
	}); err != nil {
		return nil, err
	}

	return &Ack{Message: "Account deactivated"}, nil
}
