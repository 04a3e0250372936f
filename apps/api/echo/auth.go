package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

const (
	jwtAudience     = "Alama"
	tokenContextKey = "userToken"
)

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the ID of the identity.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
	TeacherID    string `json:"teacher_id,omitempty"`
}

func (c Claims) Identity() user.Identity {
	return user.Identity{Role: c.Role, ID: c.Subject, Name: c.Name, TeacherID: c.TeacherID}
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// GetIdentityClaims returns the claims of ident. origIat is kept when refreshing a token.
func GetIdentityClaims(ident user.Identity, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   ident.ID,
			Audience:  jwtAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Role:         ident.Role,
		Name:         ident.Name,
		TeacherID:    ident.TeacherID,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func identityFromContext(ctx echo.Context) (user.Identity, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.Identity{}, err
	}
	ident := claims.Identity()
	if ident.IsZero() {
		return user.Identity{}, errUnauthorized
	}
	return ident, nil
}

// currentIdentity reloads ident from storage, so that deleted accounts cannot refresh their tokens
// and moved students get their new teacher.
func (s *Server) currentIdentity(ctx context.Context, ident user.Identity) (user.Identity, error) {
	switch {
	case ident.IsAdmin():
		adm, err := s.deps.UserSvc.GetByID(ctx, ident.ID)
		if err != nil {
			return user.Identity{}, err
		}
		return adm.Identity(), nil
	case ident.IsTeacher():
		tch, err := s.deps.SchoolSvc.GetTeacher(ctx, ident.ID)
		if err != nil {
			return user.Identity{}, err
		}
		return tch.Identity(), nil
	case ident.IsStudent():
		std, err := s.deps.SchoolSvc.GetStudentInfo(ctx, ident.ID)
		if err != nil {
			return user.Identity{}, err
		}
		return std.Identity(), nil
	}
	return user.Identity{}, errUnauthorized
}

func (s *Server) refreshToken(ctx echo.Context) (string, user.Identity, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", user.Identity{}, errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", user.Identity{}, errRefreshExpired
	}

	ident, err := s.currentIdentity(ctx.Request().Context(), claims.Identity())
	if err != nil {
		if status, _ := domainStatus(errors.Cause(err)); status == http.StatusNotFound {
			return "", user.Identity{}, errUnauthorized
		}
		return "", user.Identity{}, errors.Wrap(err, "getting current identity")
	}

	token, err := GenerateToken(GetIdentityClaims(ident, s.deps.Conf, claims.OrigIssuedAt), s.deps.Conf)
	if err != nil {
		return "", user.Identity{}, errors.Wrap(err, "generating token")
	}
	return token, ident, nil
}
