package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 12 keeps verification slow enough for credential storage
// without making login noticeably laggy
const bcryptCost = 12

// dummyHash is compared against when no user matches the identifier so a
// lookup miss takes as long as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("challengehub-dummy"), bcryptCost)

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// verifyDummy burns a bcrypt comparison for timing uniformity
func verifyDummy(password string) {
	bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
