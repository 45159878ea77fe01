package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/snapcopy/api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	a := New(AuthorizerOptions{JWTSecret: "secret"})
	id := primitive.NewObjectID()

	token, expireAt, err := a.CreateAccessToken(id)
	testutil.IsNil(t, err, "token signed")
	testutil.Assert(t, true, expireAt.After(time.Now()), "expiry in the future")

	got, err := a.Identify("Bearer " + token)
	testutil.IsNil(t, err, "token verified")
	testutil.Assert(t, id, got, "user id")
}

func TestIdentifyRejects(t *testing.T) {
	t.Parallel()

	a := New(AuthorizerOptions{JWTSecret: "secret"})
	other := New(AuthorizerOptions{JWTSecret: "another"})

	foreign, _, err := other.CreateAccessToken(primitive.NewObjectID())
	testutil.IsNil(t, err, "token signed")

	expired, err := a.SignJWT("secret", &JWTClaimUser{
		UserID: primitive.NewObjectID().Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	testutil.IsNil(t, err, "token signed")

	noSubject, err := a.SignJWT("secret", &JWTClaimUser{})
	testutil.IsNil(t, err, "token signed")

	for name, token := range map[string]string{
		"empty":         "",
		"malformed":     "abc.def",
		"wrong secret":  foreign,
		"expired":       expired,
		"missing claim": noSubject,
	} {
		_, err := a.Identify(token)
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
