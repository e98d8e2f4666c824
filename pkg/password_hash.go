package pkg

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 14 makes a single verification take tens of milliseconds,
// slowing down offline brute force without hurting login latency much
const bcryptCost = 14

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
