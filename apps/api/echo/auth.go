package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
	schedulesvc "github.com/trezcool/kelasi/services/schedule"
)

const (
	contextTokenKey = "userToken"
	audience        = "Kelasi"
)

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the identity provider, sharing conf.SecretKey with the API.
type Claims struct {
	jwt.StandardClaims
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// User returns the identity carried by the claims.
func (c Claims) User() user.User {
	roles := make([]user.Role, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, user.ParseRole(r))
	}
	return user.User{ID: c.Subject, Name: c.Name, Email: c.Email, Roles: roles}
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()

	roles := make([]string, 0, len(usr.Roles))
	for _, r := range usr.Roles {
		roles = append(roles, string(r))
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  audience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  usr.Name,
		Email: usr.Email,
		Roles: roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextToken(ctx echo.Context) (*jwt.Token, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		return token, nil
	}
	return nil, errUnauthorized
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	token, err := getContextToken(ctx)
	if err != nil {
		return Claims{}, err
	}
	if claims, ok := token.Claims.(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context) (user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	return claims.User(), nil
}

// forwardTokenMiddleware makes the Course/Schedule Service calls of the request act as the authenticated user.
func forwardTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		token, err := getContextToken(ctx)
		if err != nil {
			return err
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(schedulesvc.WithToken(req.Context(), token.Raw)))
		return next(ctx)
	}
}
