package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ROLE_OFFICE_ADMIN = "admin"
	ROLE_ARCHITECT    = "architect"
)

// Information a token enocodes
type OfficeUserClaims struct {
	OfficeID      string            `json:"office_id,omitempty"`
	Roles         []string          `json:"roles,omitempty"`
	IsServiceUser bool              `json:"is_service_user,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
	jwt.RegisteredClaims
}

func (c *OfficeUserClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *OfficeUserClaims) IsAdmin() bool {
	return c.HasRole(ROLE_OFFICE_ADMIN)
}

func GenerateNewOfficeUserToken(expiresIn time.Duration, userID string, officeID string, roles []string, payload map[string]string, secretKey string) (tokenString string, err error) {
	claims := OfficeUserClaims{
		officeID,
		roles,
		false,
		payload,
		jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateOfficeUserToken(tokenString string, secretKey string) (claims *OfficeUserClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &OfficeUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*OfficeUserClaims)
	valid = valid && token.Valid && err == nil
	return
}
