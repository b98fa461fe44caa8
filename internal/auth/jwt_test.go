package auth

import (
	"testing"

	"github.com/cosealhq/coseal/internal/config"
)

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)

	payload := JWTPayload{
		ID:    "id1234",
		Email: "test@gmail.com",
		Name:  "Test Signer",
	}

	refreshToken, accessToken, err := jwtService.GenerateRefreshAndAccessToken(payload)
	if err != nil {
		t.Fatalf(
			"An error occurred during refresh token and access token generation. Error: %v", err)
	}

	for _, token := range []*string{refreshToken, accessToken} {
		claims, err := jwtService.VerifyJwtToken(*token)
		if err != nil {
			t.Errorf(
				"An error occurred during token verification. Error: %v", err)
			continue
		}

		if claims.Signer != payload {
			t.Errorf("Expected signer %v, got %v", payload, claims.Signer)
		}
	}
}

func TestVerifyJwtTokenWrongSecret(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)
	other := NewJwt(config.AuthConfig{JWT_SECRET: "other-secret"}, nil)

	_, accessToken, err := jwtService.GenerateRefreshAndAccessToken(JWTPayload{ID: "id1234"})
	if err != nil {
		t.Fatalf("An error occurred during token generation. Error: %v", err)
	}

	if _, err := other.VerifyJwtToken(*accessToken); err == nil {
		t.Error("Expected verification with a different secret to fail")
	}
}
