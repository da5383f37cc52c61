package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
)

type AccountRepo interface {
	CreateAccount(ctx context.Context, username, email, passwordHash string) (model.Account, error)

	// FindAccount returns ok=false when no account matches.
	FindAccount(ctx context.Context, criteria model.Criteria) (acc model.Account, ok bool, err error)

	Ping(ctx context.Context) error
}
