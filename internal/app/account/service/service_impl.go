package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/repo"
)

const tokenTypeBearer = "Bearer"

// verified against when the username is unknown, so a miss costs the same
// as a wrong password.
const timingDummyPassword = "account-service/timing-dummy"

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.Account, error)
	Login(context.Context, dto.LoginDTO) (model.Token, error)
	Authenticate(ctx context.Context, accessToken string) (model.Account, error)
}

type accountService struct {
	accounts  repo.AccountRepo
	hasher    password.Hasher
	tokens    jwt.TokenCodec
	v         *validator.Validate
	log       *zap.Logger
	dummyHash string
}

func New(
	ar repo.AccountRepo,
	h password.Hasher,
	tc jwt.TokenCodec,
	v *validator.Validate,
	log *zap.Logger,
) (Service, error) {
	dummy, err := h.Hash(timingDummyPassword)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &accountService{
		accounts: ar, hasher: h, tokens: tc, v: v, log: log, dummyHash: dummy,
	}, nil
}

func (s *accountService) Register(ctx context.Context, in dto.RegisterDTO) (model.Account, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Account{}, customErrors.NewInvalidArgument(describe(err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.Account{}, err
	}

	acc, err := s.accounts.CreateAccount(ctx, in.Username, in.Email, hash)
	if err != nil {
		if field, ok := customErrors.DuplicateField(err); ok {
			s.log.Info("registration conflict",
				zap.String("username", in.Username), zap.String("field", field))
		}
		return model.Account{}, err
	}

	s.log.Info("account registered", zap.Int64("id", acc.ID), zap.String("username", acc.Username))
	return acc, nil
}

func (s *accountService) Login(ctx context.Context, in dto.LoginDTO) (model.Token, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Token{}, customErrors.NewInvalidArgument(describe(err))
	}

	acc, found, err := s.accounts.FindAccount(ctx, model.Criteria{"username": in.Username})
	if err != nil {
		return model.Token{}, err
	}

	storedHash := s.dummyHash
	if found {
		storedHash = acc.PasswordHash
	}
	ok, err := s.hasher.Verify(storedHash, in.Password)
	if err != nil {
		s.log.Error("stored password hash rejected", zap.String("username", in.Username), zap.Error(err))
		return model.Token{}, err
	}
	if !found || !ok {
		s.log.Info("login rejected", zap.String("username", in.Username))
		return model.Token{}, &customErrors.UserNotFoundError{Username: in.Username}
	}

	token, exp, err := s.tokens.Issue(map[string]string{
		jwt.ClaimSubject:  acc.Username,
		jwt.ClaimUsername: acc.Username,
	})
	if err != nil {
		return model.Token{}, err
	}

	s.log.Info("login succeeded", zap.String("username", acc.Username))
	return model.Token{AccessToken: token, TokenType: tokenTypeBearer, ExpiresAt: exp}, nil
}

func (s *accountService) Authenticate(ctx context.Context, accessToken string) (model.Account, error) {
	if accessToken == "" {
		return model.Account{}, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
	}

	claims, err := s.tokens.Validate(accessToken)
	if err != nil {
		return model.Account{}, err
	}

	username := claims[jwt.ClaimSubject]
	if username == "" {
		return model.Account{}, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
	}

	acc, found, err := s.accounts.FindAccount(ctx, model.Criteria{"username": username})
	if err != nil {
		return model.Account{}, err
	}
	if !found {
		return model.Account{}, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
	}
	return acc, nil
}

// describe lists the failing fields without echoing their values.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
