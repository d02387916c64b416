package service

import (
	"context"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
)

// Users отвечает за регистрацию пользователя при /start и чтение профиля.
type Users struct {
	repo repository.Repository
}

func NewUsers(repo repository.Repository) *Users {
	return &Users{repo: repo}
}

// Ensure создает запись пользователя, если ее еще нет. Идемпотентна.
func (s *Users) Ensure(ctx context.Context, userID int64) error {
	return s.repo.EnsureUser(ctx, userID)
}

// Profile возвращает баланс и почту; для незарегистрированного пользователя
// — значения по умолчанию.
func (s *Users) Profile(ctx context.Context, userID int64) (model.User, error) {
	return s.repo.GetProfile(ctx, userID)
}
