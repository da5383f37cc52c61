package password

type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

// Hasher hashes raw passwords and checks candidates against stored hashes.
// Verify reports a mismatch as (false, nil).
type Hasher interface {
	Hash(raw string) (string, error)
	Verify(storedHash, candidate string) (bool, error)
}
