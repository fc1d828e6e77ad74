// Package jwt реализует проверку (и выпуск для служебных нужд) JWT токенов,
// которые сервис пользователей выдаёт участникам, тренерам и администраторам.
package jwt

import (
	"time"
)

// Maker описывает генерацию и разбор JWT токенов с идентификатором и ролью пользователя.
type Maker interface {
	GenerateToken(userID int64, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на общем секретном ключе HS256.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времени жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
