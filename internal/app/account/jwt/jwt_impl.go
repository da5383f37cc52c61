package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	domain "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/jwt"
)

var signingMethods = map[domain.Algorithm]*jwt.SigningMethodHMAC{
	domain.HS256: jwt.SigningMethodHS256,
	domain.HS384: jwt.SigningMethodHS384,
	domain.HS512: jwt.SigningMethodHS512,
}

type Config struct {
	SecretKey  []byte
	Algorithm  domain.Algorithm
	TTLMinutes int
}

// JwtUtilImpl signs and validates HMAC JWTs. It is immutable after
// construction and safe for concurrent use.
type JwtUtilImpl struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

var _ domain.TokenCodec = (*JwtUtilImpl)(nil)

func NewJWTUtil(cfg Config) (*JwtUtilImpl, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, customErrors.NewInvalidArgument("jwt secret key is empty")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = domain.HS256
	}
	method, ok := signingMethods[alg]
	if !ok {
		return nil, customErrors.NewInvalidArgument(fmt.Sprintf("unsupported jwt algorithm %q", cfg.Algorithm))
	}
	if cfg.TTLMinutes < 0 {
		return nil, customErrors.NewInvalidArgument("jwt ttl must not be negative")
	}

	secret := make([]byte, len(cfg.SecretKey))
	copy(secret, cfg.SecretKey)

	return &JwtUtilImpl{
		secret: secret,
		method: method,
		ttl:    time.Duration(cfg.TTLMinutes) * time.Minute,
		now:    time.Now,
	}, nil
}

func (j *JwtUtilImpl) Issue(claims map[string]string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)

	mc := jwt.MapClaims{}
	for k, v := range claims {
		if isNumericDateClaim(k) {
			return "", time.Time{}, customErrors.NewInvalidArgument("reserved claim " + k)
		}
		mc[k] = v
	}
	mc[domain.ClaimIssuedAt] = jwt.NewNumericDate(now)
	mc[domain.ClaimExpiresAt] = jwt.NewNumericDate(exp)

	signed, err := jwt.NewWithClaims(j.method, mc).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}
	return signed, jwt.NewNumericDate(exp).Time, nil
}

// isNumericDateClaim reports registered claims that must be NumericDate values;
// a string value there would make the token unparseable.
func isNumericDateClaim(name string) bool {
	switch name {
	case domain.ClaimIssuedAt, domain.ClaimExpiresAt, domain.ClaimNotBefore:
		return true
	}
	return false
}

func (j *JwtUtilImpl) Validate(raw string) (map[string]string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, customErrors.NewInvalidToken(reasonOf(err))
	}
	if !token.Valid {
		return nil, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
	}

	out := make(map[string]string, len(mc))
	for k, v := range mc {
		if isNumericDateClaim(k) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, customErrors.NewInvalidToken(customErrors.ReasonMalformed)
		}
		out[k] = s
	}
	return out, nil
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return customErrors.ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return customErrors.ReasonExpired
	default:
		return customErrors.ReasonMalformed
	}
}
