package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/seventv/common/errors"
	"github.com/valyala/fasthttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Authorizer interface {
	SignJWT(secret string, claim jwt.Claims) (string, error)
	VerifyJWT(token []string, out jwt.Claims) (*jwt.Token, error)
	CreateAccessToken(targetID primitive.ObjectID) (string, time.Time, error)
	// Identify verifies a bearer token and returns the user it was issued to
	Identify(token string) (primitive.ObjectID, error)
	Cookie(key, token string, duration time.Duration) *fasthttp.Cookie
}

type authorizer struct {
	JWTSecret string
	Domain    string
	Secure    bool
	TokenTTL  time.Duration
}

const (
	COOKIE_AUTH = "snapcopy-auth"

	issuer = "snapcopy-api"
)

func New(opt AuthorizerOptions) Authorizer {
	ttl := opt.TokenTTL
	if ttl == 0 {
		ttl = time.Hour * 24 * 30
	}

	return &authorizer{
		JWTSecret: opt.JWTSecret,
		Domain:    opt.Domain,
		Secure:    opt.Secure,
		TokenTTL:  ttl,
	}
}

type AuthorizerOptions struct {
	JWTSecret string
	Domain    string
	Secure    bool
	TokenTTL  time.Duration
}

func (a *authorizer) CreateAccessToken(targetID primitive.ObjectID) (string, time.Time, error) {
	expireAt := time.Now().Add(a.TokenTTL)

	token, err := a.SignJWT(a.JWTSecret, &JWTClaimUser{
		UserID: targetID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: &jwt.NumericDate{Time: expireAt},
			NotBefore: &jwt.NumericDate{Time: time.Now()},
			IssuedAt:  &jwt.NumericDate{Time: time.Now()},
		},
	})
	if err != nil {
		zap.S().Errorw("access_token, sign",
			"error", err,
			"target_id", targetID,
		)

		return "", time.Time{}, err
	}

	return token, expireAt, nil
}

func (a *authorizer) Identify(token string) (primitive.ObjectID, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return primitive.NilObjectID, errors.ErrUnauthorized().SetDetail("Missing Token")
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return primitive.NilObjectID, errors.ErrUnauthorized().SetDetail("Bad Token")
	}

	claims := &JWTClaimUser{}
	if _, err := a.VerifyJWT(segments, claims); err != nil {
		return primitive.NilObjectID, errors.ErrUnauthorized().SetDetail(err.Error())
	}

	if claims.UserID == "" {
		return primitive.NilObjectID, errors.ErrUnauthorized().SetDetail("Bad Token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, errors.ErrUnauthorized().SetDetail(err.Error())
	}

	return userID, nil
}

// Cookie returns a cookie
func (a *authorizer) Cookie(key, token string, duration time.Duration) *fasthttp.Cookie {
	cookie := &fasthttp.Cookie{}
	cookie.SetKey(key)
	cookie.SetValue(token)
	cookie.SetExpire(time.Now().Add(duration))
	cookie.SetHTTPOnly(true)
	cookie.SetDomain(a.Domain)
	cookie.SetPath("/")
	cookie.SetSecure(a.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteNoneMode)

	return cookie
}
