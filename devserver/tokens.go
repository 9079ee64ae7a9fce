package devserver

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// CredentialIssuer mints and verifies the development server's HS256
// credentials with the same claim set the production backend issues.
type CredentialIssuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCredentialIssuer(key []byte, accessTTL, refreshTTL time.Duration) *CredentialIssuer {
	return &CredentialIssuer{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess mints a short-lived access credential for the user.
func (i *CredentialIssuer) IssueAccess(user UserRecord) (string, error) {
	return i.sign(user, tokenTypeAccess, i.accessTTL)
}

// IssueRefresh mints the longer-lived refresh credential.
func (i *CredentialIssuer) IssueRefresh(user UserRecord) (string, error) {
	return i.sign(user, tokenTypeRefresh, i.refreshTTL)
}

func (i *CredentialIssuer) sign(user UserRecord, tokenType string, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"role":       string(user.Role),
		"token_type": tokenType,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
		"jti":        uuid.New().String(),
	})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", errors.Wrap(err, "[CredentialIssuer.sign] sign token")
	}
	return signed, nil
}

// VerifyAccess validates an access credential and returns its username.
func (i *CredentialIssuer) VerifyAccess(raw string) (string, error) {
	return i.verify(raw, tokenTypeAccess)
}

// VerifyRefresh validates a refresh credential and returns its username.
func (i *CredentialIssuer) VerifyRefresh(raw string) (string, error) {
	return i.verify(raw, tokenTypeRefresh)
}

func (i *CredentialIssuer) verify(raw, wantType string) (string, error) {
	token, err := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	).Parse(raw, func(*jwtlib.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "[CredentialIssuer.verify] parse token")
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", errors.New("[CredentialIssuer.verify] claims are not a JSON object")
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != wantType {
		return "", errors.Errorf("[CredentialIssuer.verify] token type %q, want %q", tokenType, wantType)
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", errors.New("[CredentialIssuer.verify] missing username claim")
	}
	return username, nil
}
