package raverify

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"time"
)

// peerCertificate is the parsed DER certificate plus the extension value
// this verifier needs; everything else is left to the caller.
type peerCertificate struct {
	cert        *x509.Certificate
	reportValue []byte
}

// parsePeerCertificate parses the DER bytes, enforces the validity window
// against now (NotBefore inclusive, NotAfter exclusive), and locates the
// attestation-report extension (§4.4).
func parsePeerCertificate(der []byte, now time.Time) (peerCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return peerCertificate{}, CertificateParsingError(err)
	}

	if now.Before(cert.NotBefore) {
		return peerCertificate{}, CertificateNotBegin()
	}
	if !now.Before(cert.NotAfter) {
		return peerCertificate{}, CertificateExpired()
	}

	var reportValue []byte
	found := false
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(AttestationReportOID) {
			reportValue = ext.Value
			found = true
			break
		}
	}
	if !found {
		return peerCertificate{}, MissingAttestationReport()
	}

	return peerCertificate{
		cert:        cert,
		reportValue: reportValue,
	}, nil
}

// subjectPublicKeyRaw extracts the subject public key as the 65-byte SEC1
// uncompressed point (0x04 || X || Y). The enclave writes exactly this
// encoding into the certificate's subject public key, so no compression
// or curve conversion is needed here.
func subjectPublicKeyRaw(cert *x509.Certificate) ([]byte, error) {
	ecdsaPub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, CertificateParsingError(errUnsupportedPublicKeyType)
	}
	ecdhPub, err := ecdsaPub.ECDH()
	if err != nil {
		return nil, CertificateParsingError(err)
	}
	return ecdhPub.Bytes(), nil
}

var errUnsupportedPublicKeyType = unsupportedPublicKeyTypeError{}

type unsupportedPublicKeyTypeError struct{}

func (unsupportedPublicKeyTypeError) Error() string {
	return "certificate subject public key is not an uncompressed EC point"
}

// checkKeyBinding enforces public_key == 0x04 || quote.ReportBody.ReportData[:64].
func checkKeyBinding(publicKey []byte, quote Quote) error {
	if len(publicKey) != 65 || publicKey[0] != 0x04 {
		return PublicKeyMismatch()
	}
	if !bytes.Equal(publicKey[1:], quote.ReportBody.ReportData[:]) {
		return PublicKeyMismatch()
	}
	return nil
}
