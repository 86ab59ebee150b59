package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceJWTRoundTrip(t *testing.T) {
	key := []byte("secret")

	tokenString, err := GenerateServiceJWT("order-service", time.Minute, key)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, validateErr := ValidateServiceJWT(tokenString, key)
	require.NoError(t, validateErr)

	claims, ok := token.Claims.(*ServiceClaims)
	require.True(t, ok)
	assert.Equal(t, "order-service", claims.Service)
}

func TestServiceJWTWrongKey(t *testing.T) {
	tokenString, err := GenerateServiceJWT("order-service", time.Minute, []byte("secret"))
	require.NoError(t, err)

	_, validateErr := ValidateServiceJWT(tokenString, []byte("another"))
	assert.Error(t, validateErr)
}

func TestServiceJWTExpired(t *testing.T) {
	key := []byte("secret")

	tokenString, err := GenerateServiceJWT("order-service", -time.Minute, key)
	require.NoError(t, err)

	_, validateErr := ValidateServiceJWT(tokenString, key)
	assert.Error(t, validateErr)
}
