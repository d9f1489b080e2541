package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the bcrypt hash stored in users.password_hash.
// The cost comes from configuration so environments can trade hashing
// time against login latency.
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash.  bcrypt
// does the comparison in constant time; callers only ever see the
// boolean.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
