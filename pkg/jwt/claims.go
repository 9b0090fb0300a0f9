package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims represents JWT custom claims. UserID is the Telegram user id the
// token was minted for, so bot and HTTP callers share one identity space.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}
