package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/habitflow/scheduler/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateSettings(ctx context.Context, settings Settings) (User, error)
}

type UserServiceImpl struct {
	repo     Repo
	eventBus *event_bus.EventBus
}

func NewUserService(repo Repo, eventBus *event_bus.EventBus) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, eventBus: eventBus}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	if user.Settings.Timezone == "" {
		user.Settings.Timezone = "UTC"
	}
	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) UpdateSettings(ctx context.Context, settings Settings) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	updated, err := u.repo.UpdateSettings(ctx, userId, settings)
	if err != nil {
		return User{}, fmt.Errorf("failed to update settings: %w", err)
	}

	err = u.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.UserSettingsUpdated, event_bus.UserSettingsChanged{
		UserId:       updated.Id,
		WeekStartsOn: updated.Settings.WeekStartsOn,
		Timezone:     updated.Settings.Timezone,
	}))
	if err != nil {
		log.Warnf("failed to publish settings update for user %d: %v", updated.Id, err)
	}
	return updated, nil
}
