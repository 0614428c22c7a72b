package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/estimation-engine/internal/model"
)

// Parser validates access tokens issued by the auth collaborator and extracts
// the caller identity. Authorization decisions stay upstream; this service
// only needs an actor id for audit entries.
type Parser struct {
	secret []byte
}

func NewParser(accessSecret string) *Parser {
	return &Parser{secret: []byte(accessSecret)}
}

type claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

func (p *Parser) Parse(token string) (model.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("invalid token claims")
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		// Fall back to the subject claim for tokens minted by older issuers.
		userID, err = uuid.Parse(c.Subject)
		if err != nil {
			return model.Principal{}, fmt.Errorf("token carries no user id")
		}
	}
	return model.Principal{UserID: userID, Roles: c.Roles}, nil
}
