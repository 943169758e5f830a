package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/textilia/contracts-service/internal/model"
)

type accessClaims struct {
	Name         string `json:"name"`
	BusinessType string `json:"businessType"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an access token and extracts the caller principal.
// The subject claim carries the user id.
func (p *Parser) Parse(token string) (model.Principal, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !parsed.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	return model.Principal{
		UserID:       userID,
		Name:         claims.Name,
		BusinessType: claims.BusinessType,
	}, nil
}
