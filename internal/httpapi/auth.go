package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimsContextKey    = "auth_claims"
	bearerPrefix        = "Bearer "
	headerAuthorization = "Authorization"
)

// bearerValidator checks HS256 bearer tokens issued for the front desk.
type bearerValidator struct {
	signingKey []byte
	parser     *jwt.Parser
}

func newBearerValidator(signingKey string, issuer string) *bearerValidator {
	return &bearerValidator{
		signingKey: []byte(signingKey),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Validate parses raw and returns its registered claims.
func (validator *bearerValidator) Validate(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := validator.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return validator.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GinMiddleware rejects requests without a valid bearer token and stores the claims under key.
func (validator *bearerValidator) GinMiddleware(key string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader(headerAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing bearer token"))
			return
		}
		claims, err := validator.Validate(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid bearer token"))
			return
		}
		ctx.Set(key, claims)
		ctx.Next()
	}
}

func getClaims(ctx *gin.Context) *jwt.RegisteredClaims {
	claimsValue, ok := ctx.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*jwt.RegisteredClaims)
	return claims
}
