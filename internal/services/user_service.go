package services

import (
	"database/sql"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type UserService struct {
	Users *repos.UserRepo
}

func NewUserService(users *repos.UserRepo) *UserService { return &UserService{Users: users} }

// FindByID returns nil details and a nil error when no user has that id.
func (s *UserService) FindByID(id string) (*domain.UserDetails, error) {
	u, err := s.Users.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := u.Details()
	return &d, nil
}
