package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/repo"
)

const DefaultAcquireTimeout = 5 * time.Second

// searchable maps criteria keys onto account columns.
var searchable = map[string]string{
	"id":       "id",
	"username": "username",
	"email":    "email",
}

type PostgresAccountRepo struct {
	db             *gorm.DB
	acquireTimeout time.Duration
}

var _ repo.AccountRepo = (*PostgresAccountRepo)(nil)

func NewPostgresAccountRepo(db *gorm.DB, acquireTimeout time.Duration) *PostgresAccountRepo {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &PostgresAccountRepo{db: db, acquireTimeout: acquireTimeout}
}

// withConn checks out one pooled connection, waiting at most acquireTimeout,
// and returns it to the pool when fn returns or panics.
func (p *PostgresAccountRepo) withConn(ctx context.Context, op string, fn func(conn *gorm.DB) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	acquired := false
	err := p.db.WithContext(acquireCtx).Connection(func(conn *gorm.DB) error {
		acquired = true
		return fn(conn.WithContext(ctx))
	})
	if err != nil && !acquired {
		return customErrors.WrapStorage(err, op+": acquire connection")
	}
	return err
}

func (p *PostgresAccountRepo) CreateAccount(ctx context.Context, username, email, passwordHash string) (model.Account, error) {
	acc := model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := p.withConn(ctx, "CreateAccount", func(conn *gorm.DB) error {
		return conn.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&acc).Error
		})
	})
	if err != nil {
		if field, ok := duplicateField(err); ok {
			return model.Account{}, &customErrors.DuplicateAccountError{Field: field}
		}
		if errors.Is(err, customErrors.ErrInternal) {
			return model.Account{}, err
		}
		return model.Account{}, customErrors.WrapStorage(err, "CreateAccount")
	}
	return acc, nil
}

func (p *PostgresAccountRepo) FindAccount(ctx context.Context, criteria model.Criteria) (model.Account, bool, error) {
	if len(criteria) == 0 {
		return model.Account{}, false, customErrors.NewInvalidArgument("empty account criteria")
	}

	where := make(map[string]interface{}, len(criteria))
	for key, value := range criteria {
		column, ok := searchable[key]
		if !ok {
			return model.Account{}, false, customErrors.NewInvalidArgument("unknown account field " + strconv.Quote(key))
		}
		if column == "id" {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return model.Account{}, false, customErrors.NewInvalidArgument("account id must be an integer")
			}
			where[column] = id
			continue
		}
		where[column] = value
	}

	var acc model.Account
	found := false
	err := p.withConn(ctx, "FindAccount", func(conn *gorm.DB) error {
		res := conn.Where(where).First(&acc)
		switch {
		case errors.Is(res.Error, gorm.ErrRecordNotFound):
			return nil
		case res.Error != nil:
			return res.Error
		}
		found = true
		return nil
	})
	if err != nil {
		if errors.Is(err, customErrors.ErrInternal) {
			return model.Account{}, false, err
		}
		return model.Account{}, false, customErrors.WrapStorage(err, "FindAccount")
	}
	if !found {
		return model.Account{}, false, nil
	}
	return acc, true, nil
}

func (p *PostgresAccountRepo) Ping(ctx context.Context) error {
	err := p.withConn(ctx, "Ping", func(conn *gorm.DB) error {
		return conn.Exec("SELECT 1").Error
	})
	if err != nil && !errors.Is(err, customErrors.ErrInternal) {
		return customErrors.WrapStorage(err, "Ping")
	}
	return err
}

// duplicateField reports which unique index a failed insert collided with.
// Postgres exposes the index name; SQLite only the "table.column" message.
func duplicateField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return "", false
		}
		if pgErr.ConstraintName != "" {
			return fieldFromConstraint(pgErr.ConstraintName), true
		}
		// Detail looks like `Key (username)=(alice) already exists.`
		key, _, _ := strings.Cut(pgErr.Detail, "=")
		return fieldFromConstraint(key), true
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fieldFromConstraint(msg), true
	}
	return "", false
}

func fieldFromConstraint(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "username"):
		return customErrors.FieldUsername
	case strings.Contains(s, "email"):
		return customErrors.FieldEmail
	default:
		return s
	}
}
