package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateSettings(ctx context.Context, userId int, settings Settings) (User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, username, display_name, timezone, week_first_day)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Username,
		user.DisplayName,
		user.Settings.Timezone,
		int(user.Settings.WeekStartsOn),
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, week_first_day FROM users WHERE id = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, id), fmt.Sprintf("id %d", id))
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, week_first_day FROM users WHERE uid = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, uid), "uid "+uid)
}

func (u *UserRepoImpl) UpdateSettings(ctx context.Context, userId int, settings Settings) (User, error) {
	query := `UPDATE users SET timezone = $1, week_first_day = $2 WHERE id = $3
				RETURNING id, uid, username, display_name, timezone, week_first_day`
	row := u.db.QueryRow(ctx, query, settings.Timezone, int(settings.WeekStartsOn), userId)
	return u.scanUser(row, fmt.Sprintf("id %d", userId))
}

func (u *UserRepoImpl) scanUser(row pgx.Row, key string) (User, error) {
	var user User
	var weekFirstDay int
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Username,
		&user.DisplayName,
		&user.Settings.Timezone,
		&weekFirstDay,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("user with %s not found", key)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	user.Settings.WeekStartsOn = time.Weekday(weekFirstDay)
	return user, nil
}
