package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	domain "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/password"
)

const (
	defaultArgonIterations  = 2
	defaultArgonMemoryKiB   = 64 * 1024 // 64 MiB
	defaultArgonParallelism = 4
	argonSaltLength         = 16
	argonKeyLength          = 32

	bcryptMaxPasswordBytes = 72
)

var (
	errEmptyPassword   = errors.New("password is empty")
	errInvalidUTF8     = errors.New("password is not valid utf-8")
	errPasswordTooLong = errors.New("password exceeds 72 bytes")
	errUnknownHash     = errors.New("unrecognised hash format")
)

type Config struct {
	Algorithm domain.Algorithm
	// WorkFactor is the argon2id iteration count or the bcrypt cost.
	WorkFactor  int
	MemoryKiB   uint32
	Parallelism uint8
	Pepper      string
}

// Hasher produces argon2id or bcrypt hashes and verifies either format.
type Hasher struct {
	algorithm  domain.Algorithm
	argon      *argon2id.Params
	bcryptCost int
	pepper     string
}

var _ domain.Hasher = (*Hasher)(nil)

func NewHasher(cfg Config) (*Hasher, error) {
	h := &Hasher{
		algorithm:  cfg.Algorithm,
		pepper:     cfg.Pepper,
		bcryptCost: bcrypt.DefaultCost,
		argon: &argon2id.Params{
			Memory:      defaultArgonMemoryKiB,
			Iterations:  defaultArgonIterations,
			Parallelism: defaultArgonParallelism,
			SaltLength:  argonSaltLength,
			KeyLength:   argonKeyLength,
		},
	}
	if h.algorithm == "" {
		h.algorithm = domain.Argon2id
	}

	switch h.algorithm {
	case domain.Argon2id:
		if cfg.WorkFactor < 0 {
			return nil, customErrors.NewInvalidArgument("argon2id work factor must be positive")
		}
		if cfg.WorkFactor > 0 {
			h.argon.Iterations = uint32(cfg.WorkFactor)
		}
		if cfg.MemoryKiB > 0 {
			h.argon.Memory = cfg.MemoryKiB
		}
		if cfg.Parallelism > 0 {
			h.argon.Parallelism = cfg.Parallelism
		}
	case domain.Bcrypt:
		if cfg.WorkFactor != 0 {
			if cfg.WorkFactor < bcrypt.MinCost || cfg.WorkFactor > bcrypt.MaxCost {
				return nil, customErrors.NewInvalidArgument(
					fmt.Sprintf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
			}
			h.bcryptCost = cfg.WorkFactor
		}
	default:
		return nil, customErrors.NewInvalidArgument(fmt.Sprintf("unsupported hash algorithm %q", cfg.Algorithm))
	}
	return h, nil
}

func (h *Hasher) Hash(raw string) (string, error) {
	if err := checkRaw(raw); err != nil {
		return "", customErrors.WrapEncoding(err, "Hash")
	}
	peppered := raw + h.pepper

	if h.algorithm == domain.Bcrypt {
		if len(peppered) > bcryptMaxPasswordBytes {
			return "", customErrors.WrapEncoding(errPasswordTooLong, "Hash")
		}
		out, err := bcrypt.GenerateFromPassword([]byte(peppered), h.bcryptCost)
		if err != nil {
			return "", customErrors.WrapEncoding(err, "Hash")
		}
		return string(out), nil
	}

	out, err := argon2id.CreateHash(peppered, h.argon)
	if err != nil {
		return "", customErrors.WrapEncoding(err, "Hash")
	}
	return out, nil
}

// Verify picks the algorithm from the stored hash, not from the configured
// one, so bcrypt rows keep verifying after a switch to argon2id.
func (h *Hasher) Verify(storedHash, candidate string) (bool, error) {
	if !utf8.ValidString(candidate) {
		return false, customErrors.WrapEncoding(errInvalidUTF8, "Verify")
	}
	peppered := candidate + h.pepper

	switch {
	case strings.HasPrefix(storedHash, "$argon2id$"):
		ok, err := argon2id.ComparePasswordAndHash(peppered, storedHash)
		if err != nil {
			return false, customErrors.WrapEncoding(err, "Verify")
		}
		return ok, nil

	case isBcrypt(storedHash):
		err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(peppered))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, customErrors.WrapEncoding(err, "Verify")
		}

	default:
		return false, customErrors.WrapEncoding(errUnknownHash, "Verify")
	}
}

func checkRaw(raw string) error {
	if raw == "" {
		return errEmptyPassword
	}
	if !utf8.ValidString(raw) {
		return errInvalidUTF8
	}
	return nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
