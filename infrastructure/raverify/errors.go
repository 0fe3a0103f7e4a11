package raverify

import (
	"fmt"
	"net/http"

	svcerrors "github.com/R3E-Network/service_layer/infrastructure/errors"
)

// Remote-attestation error codes (RA_8xxx), slotting in next to this
// repository's AUTH_/VAL_/CRYPTO_/TEE_ ranges.
const (
	ErrCodeBadRootCert            svcerrors.ErrorCode = "RA_8001"
	ErrCodeBadQuoteStatusConfig   svcerrors.ErrorCode = "RA_8002"
	ErrCodeCertificateParsing     svcerrors.ErrorCode = "RA_8003"
	ErrCodeCertificateNotBegin    svcerrors.ErrorCode = "RA_8004"
	ErrCodeCertificateExpired     svcerrors.ErrorCode = "RA_8005"
	ErrCodeMissingReport          svcerrors.ErrorCode = "RA_8006"
	ErrCodeReportParsing          svcerrors.ErrorCode = "RA_8007"
	ErrCodeMissingSigningCert     svcerrors.ErrorCode = "RA_8008"
	ErrCodeSigningCertChainParse  svcerrors.ErrorCode = "RA_8009"
	ErrCodeSigningCertParse       svcerrors.ErrorCode = "RA_8010"
	ErrCodeSigningCertVerify      svcerrors.ErrorCode = "RA_8011"
	ErrCodeReportSignatureInvalid svcerrors.ErrorCode = "RA_8012"
	ErrCodeDateTimeParsing        svcerrors.ErrorCode = "RA_8013"
	ErrCodeQuoteParsing           svcerrors.ErrorCode = "RA_8014"
	ErrCodeOldReport              svcerrors.ErrorCode = "RA_8015"
	ErrCodeInvalidQuoteStatus     svcerrors.ErrorCode = "RA_8016"
	ErrCodeMeasurementMismatch    svcerrors.ErrorCode = "RA_8017"
	ErrCodePublicKeyMismatch      svcerrors.ErrorCode = "RA_8018"
	ErrCodeNoCertificatesPresent  svcerrors.ErrorCode = "RA_8019"
)

// BadRootCert reports that Config.SigningCACertPEM did not parse
// to at least one trust anchor (Invariant 1).
func BadRootCert(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeBadRootCert, "signing CA certificate PEM did not yield a trust anchor", http.StatusInternalServerError, err)
}

// BadQuoteStatusConfig reports an unrecognized quote-status literal in
// Config.ValidEnclaveQuoteStatuses (Invariant 2).
func BadQuoteStatusConfig(status string) *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeBadQuoteStatusConfig, fmt.Sprintf("unrecognized quote status literal %q", status), http.StatusInternalServerError).
		WithDetails("status", status)
}

// CertificateParsingError reports that the peer DER certificate could not be parsed.
func CertificateParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeCertificateParsing, "certificate parsing failed", http.StatusBadRequest, err)
}

// CertificateNotBegin reports that now is before the certificate's NotBefore.
func CertificateNotBegin() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeCertificateNotBegin, "certificate is not yet valid", http.StatusUnauthorized)
}

// CertificateExpired reports that now is at or after the certificate's NotAfter.
func CertificateExpired() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeCertificateExpired, "certificate has expired", http.StatusUnauthorized)
}

// MissingAttestationReport reports that the peer certificate carries no
// extension matching AttestationReportOID.
func MissingAttestationReport() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeMissingReport, "certificate has no attestation report extension", http.StatusUnauthorized)
}

// AttestationReportParsingError reports that the envelope JSON was
// malformed or missing a required field.
func AttestationReportParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeReportParsing, "attestation report envelope parsing failed", http.StatusBadRequest, err)
}

// MissingAttestationReportSigningCertificate reports an empty signing_cert chain.
func MissingAttestationReportSigningCertificate() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeMissingSigningCert, "attestation report signing certificate chain is empty", http.StatusUnauthorized)
}

// AttestationReportSigningCertificateChainParsingError reports unparsable PEM framing.
func AttestationReportSigningCertificateChainParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeSigningCertChainParse, "attestation report signing certificate chain PEM parsing failed", http.StatusBadRequest, err)
}

// AttestationReportSigningCertificateParsingError reports a PEM block that
// decodes but fails to parse as X.509.
func AttestationReportSigningCertificateParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeSigningCertParse, "attestation report signing certificate X.509 parsing failed", http.StatusBadRequest, err)
}

// AttestationReportSigningCertificateVerificationError reports that the
// signing chain failed to validate against the configured root store.
func AttestationReportSigningCertificateVerificationError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeSigningCertVerify, "attestation report signing certificate chain verification failed", http.StatusUnauthorized, err)
}

// ReportSignatureInvalid reports that the RSA-PKCS1-SHA256 signature over
// the report body failed to verify under the end-entity signing key.
func ReportSignatureInvalid(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeReportSignatureInvalid, "attestation report signature verification failed", http.StatusUnauthorized, err)
}

// DateTimeParsingError reports a malformed report body timestamp.
func DateTimeParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeDateTimeParsing, "attestation report timestamp parsing failed", http.StatusBadRequest, err)
}

// QuoteParsingError reports unreadable base64 or a quote shorter than the fixed layout.
func QuoteParsingError(err error) *svcerrors.ServiceError {
	return svcerrors.Wrap(ErrCodeQuoteParsing, "attestation quote parsing failed", http.StatusBadRequest, err)
}

// OldAttestationReport reports that the report body's timestamp is older
// than ReportValiditySecs before now.
func OldAttestationReport() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeOldReport, "attestation report is too old", http.StatusUnauthorized)
}

// InvalidEnclaveQuoteStatus reports that the parsed status is not in the
// configured accepted set. The offending status is carried verbatim.
func InvalidEnclaveQuoteStatus(status string) *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeInvalidQuoteStatus, fmt.Sprintf("enclave quote status %q is not accepted", status), http.StatusUnauthorized).
		WithDetails("status", status)
}

// MeasurementMismatch reports that the decoded quote fails one of the
// configured EnclaveInfo identity constraints (mr_signer, mr_enclave,
// cpu_svn, or isv_svn).
func MeasurementMismatch(reason string) *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeMeasurementMismatch, "enclave measurement does not satisfy configured policy", http.StatusUnauthorized).
		WithDetails("reason", reason)
}

// PublicKeyMismatch reports that the certificate's subject public key does
// not equal 0x04 || quote.ReportBody.ReportData[0:64].
func PublicKeyMismatch() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodePublicKeyMismatch, "certificate public key does not match attested report data", http.StatusUnauthorized)
}

// NoCertificatesPresented reports an empty chain presented to a TLS adapter.
func NoCertificatesPresented() *svcerrors.ServiceError {
	return svcerrors.New(ErrCodeNoCertificatesPresent, "no certificates presented", http.StatusUnauthorized)
}

// asServiceError unwraps err (possibly flattened by a tlsVerificationError)
// back to its *ServiceError, for callers that want the structured code.
func asServiceError(err error) (*svcerrors.ServiceError, bool) {
	for err != nil {
		if se, ok := err.(*svcerrors.ServiceError); ok {
			return se, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
