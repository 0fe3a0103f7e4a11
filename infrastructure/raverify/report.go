package raverify

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"
)

// byteArray decodes a JSON array of byte values ([12, 0, 255, ...]) into a
// []byte. The wire envelope serializes body/signature/signing_cert this
// way rather than base64, matching the upstream Rust encoder. A bespoke
// UnmarshalJSON is this codebase's usual way of handling a wire shape
// encoding/json can't map to directly, rather than reaching for a second
// JSON library.
type byteArray []byte

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var nums []byte
	if err := json.Unmarshal(data, &nums); err == nil {
		*b = nums
		return nil
	}
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// envelopeWire is the JSON shape of the AttestationReport envelope.
type envelopeWire struct {
	Body        byteArray `json:"body"`
	Signature   byteArray `json:"signature"`
	SigningCert byteArray `json:"signing_cert"`
}

// AttestationReport is the JSON envelope produced by the attestation
// service: a signed report body plus the certificate chain that signed it.
type AttestationReport struct {
	// Body is preserved bit-exactly from the wire; it must never be
	// re-serialized before the signature check, or the check would be
	// validating different bytes than the ones actually signed.
	Body        []byte
	Signature   []byte
	SigningCert []byte
}

// decodeAttestationReport parses the envelope JSON. Missing fields or type
// mismatches surface as AttestationReportParsingError.
func decodeAttestationReport(raw []byte) (AttestationReport, error) {
	var w envelopeWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return AttestationReport{}, AttestationReportParsingError(err)
	}
	if w.Body == nil || w.Signature == nil || w.SigningCert == nil {
		return AttestationReport{}, AttestationReportParsingError(fmt.Errorf("envelope missing body, signature, or signing_cert"))
	}
	return AttestationReport{
		Body:        w.Body,
		Signature:   w.Signature,
		SigningCert: w.SigningCert,
	}, nil
}

// signingCertificateChain splits the PEM-concatenated signing_cert field
// into an ordered, end-entity-first X.509 chain.
func signingCertificateChain(pemBytes []byte) ([]*x509.Certificate, error) {
	var ders [][]byte
	rest := pemBytes
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		ders = append(ders, block.Bytes)
	}
	if len(bytes.TrimSpace(pemBytes)) > 0 && len(ders) == 0 {
		return nil, AttestationReportSigningCertificateChainParsingError(fmt.Errorf("no PEM CERTIFICATE blocks found"))
	}
	if len(ders) == 0 {
		return nil, MissingAttestationReportSigningCertificate()
	}

	certs := make([]*x509.Certificate, 0, len(ders))
	for _, der := range ders {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, AttestationReportSigningCertificateParsingError(err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// AttestationReportBody is the JSON body whose bytes are covered by the
// envelope's RSA signature.
type AttestationReportBody struct {
	Timestamp             string `json:"timestamp"`
	IsvEnclaveQuoteStatus string `json:"isv_enclave_quote_status"`
	IsvEnclaveQuoteBody   string `json:"isv_enclave_quote_body"`
}

// decodeAttestationReportBody parses the body JSON, additional unknown
// fields are ignored per §6.
func decodeAttestationReportBody(raw []byte) (AttestationReportBody, error) {
	var body AttestationReportBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return AttestationReportBody{}, AttestationReportParsingError(err)
	}
	if body.Timestamp == "" || body.IsvEnclaveQuoteStatus == "" || body.IsvEnclaveQuoteBody == "" {
		return AttestationReportBody{}, AttestationReportParsingError(fmt.Errorf("body missing timestamp, isv_enclave_quote_status, or isv_enclave_quote_body"))
	}
	return body, nil
}

// parseTimestamp appends a UTC offset to the zone-less ISO-8601 timestamp
// the attestation service emits and parses it as an absolute instant.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.999999-07:00", s+"+00:00")
	if err != nil {
		return time.Time{}, DateTimeParsingError(err)
	}
	return t, nil
}

// decodeQuoteFromBody base64-decodes and lays out the binary Quote carried
// in the report body.
func decodeQuoteFromBody(body AttestationReportBody) (Quote, error) {
	raw, err := base64.StdEncoding.DecodeString(body.IsvEnclaveQuoteBody)
	if err != nil {
		return Quote{}, QuoteParsingError(err)
	}
	q, err := decodeQuote(raw)
	if err != nil {
		return Quote{}, QuoteParsingError(err)
	}
	return q, nil
}

// verifyReportSignature checks envelope.Signature over envelope.Body
// exactly as received, under the end-entity signing certificate's RSA
// public key (RSA-PKCS1-v1.5 / SHA-256 per §4.5).
func verifyReportSignature(signingCert *x509.Certificate, body, signature []byte) error {
	pub, ok := signingCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return ReportSignatureInvalid(fmt.Errorf("signing certificate public key is not RSA"))
	}
	sum := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, sum[:], signature); err != nil {
		return ReportSignatureInvalid(err)
	}
	return nil
}
