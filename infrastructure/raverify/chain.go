package raverify

import (
	"crypto/x509"
	"time"
)

// verifySigningChain validates the attestation report's end-entity signing
// certificate against the configured root store, using TLS-server
// semantics (so key-usage/EKU extensions in the signing chain must be
// compatible with server-auth) and the supplied instant rather than the
// wall clock, so a single verification is time-consistent throughout.
//
// Signature algorithms and key sizes are those crypto/x509's Verify
// accepts; this function adds no narrower allow-list. Besides ECDSA
// P-256/SHA-256 and RSA-PKCS1/SHA-256, crypto/x509 also accepts e.g.
// SHA-384/SHA-512 variants, RSA-PSS and Ed25519 signatures in the chain.
// A chain crypto/x509 rejects (such as one signed with SHA-1) fails with
// an x509 error surfaced here as
// AttestationReportSigningCertificateVerificationError.
func verifySigningChain(roots *x509.CertPool, chain []*x509.Certificate, now time.Time) error {
	if len(chain) == 0 {
		return MissingAttestationReportSigningCertificate()
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	if _, err := chain[0].Verify(opts); err != nil {
		return AttestationReportSigningCertificateVerificationError(err)
	}
	return nil
}
