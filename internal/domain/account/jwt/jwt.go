package jwt

import "time"

type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
)

// Reserved claim names set by the codec itself.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimSubject   = "sub"
	ClaimUsername  = "username"
)

type TokenCodec interface {
	Issue(claims map[string]string) (token string, exp time.Time, err error)
	Validate(token string) (claims map[string]string, err error)
}
