package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the token payload issued by the identity service.
type Claims struct {
	Role    string `json:"role"`
	StoreID string `json:"store_id"`
	jwt.RegisteredClaims
}

type JWTAuth struct {
	secret []byte
	onFail func(w http.ResponseWriter, r *http.Request)
}

func NewJWTAuth(secret string, onFail func(w http.ResponseWriter, r *http.Request)) *JWTAuth {
	return &JWTAuth{secret: []byte(secret), onFail: onFail}
}

func (a *JWTAuth) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Issue signs a token; used by tooling and tests.
func (a *JWTAuth) Issue(userID, role, storeID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:    role,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token and puts the
// caller's identity on the request context.
func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			a.onFail(w, r)
			return
		}
		claims, err := a.Parse(tokenString)
		if err != nil {
			a.onFail(w, r)
			return
		}
		role := claims.Role
		if role == "" {
			role = auth.RoleStaff
		}
		ctx := auth.WithUser(r.Context(), auth.UserContext{
			UserID:  claims.Subject,
			Role:    role,
			StoreID: claims.StoreID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
