package raverify

import (
	"crypto/rsa"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnclaveClaims binds a short-lived internal service token to the enclave
// identity a VerifyCert call just confirmed, so downstream services can
// trust the verifier's decision instead of re-attesting the same peer.
type EnclaveClaims struct {
	MrSigner  string `json:"mr_signer"`
	MrEnclave string `json:"mr_enclave"`
	jwt.RegisteredClaims
}

// TokenIssuer mints EnclaveClaims tokens for successfully verified peers.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	issuer     string
	expiry     time.Duration
}

// NewTokenIssuer constructs a TokenIssuer. expiry defaults to 5 minutes,
// deliberately short: the token asserts "this peer attested successfully
// just now", not a durable identity.
func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer string, expiry time.Duration) *TokenIssuer {
	if expiry == 0 {
		expiry = 5 * time.Minute
	}
	return &TokenIssuer{privateKey: privateKey, issuer: issuer, expiry: expiry}
}

// IssueFor mints a token asserting result's enclave identity.
func (t *TokenIssuer) IssueFor(result *CertVerifyResult) (string, error) {
	now := time.Now()
	claims := &EnclaveClaims{
		MrSigner:  hex.EncodeToString(result.Quote.ReportBody.Measurement.MrSigner[:]),
		MrEnclave: hex.EncodeToString(result.Quote.ReportBody.Measurement.MrEnclave[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
			Issuer:    t.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(t.privateKey)
}
