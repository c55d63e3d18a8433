// Package jwt verifies the RS256 access tokens presented to the Handy API.
//
// Tokens are minted by the external identity provider; the API never
// signs anything. The server loads the provider's public key at startup
// and checks each bearer token's signature, algorithm, time window, and
// issuer:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PublicKeyPath: "./keys/public.pem",
//	    Issuer:        "handy.forgo.software",
//	})
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // ErrTokenExpired, ErrInvalidSignature, or ErrInvalidToken
//	}
//	externalID := claims.UserID
//
// Validation failures map to distinct sentinel errors so the auth
// middleware can report expiry separately from a bad signature.
//
// Callers holding an *rsa.PublicKey directly (tests, key rotation) can
// construct a verifier without touching the filesystem:
//
//	service := jwt.NewVerifier(publicKey, "handy.forgo.software")
package jwt
