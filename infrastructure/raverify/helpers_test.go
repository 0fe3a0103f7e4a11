package raverify

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"
)

// jsonByteArray renders b as a JSON array of byte values, matching the
// wire encoding envelopeWire expects (not base64).
func jsonByteArray(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// buildQuoteBytes lays out a minimal valid SGX QUOTE with the given
// report-data, mr_signer, mr_enclave, cpu_svn and isv_svn.
func buildQuoteBytes(t *testing.T, reportData [64]byte, mrSigner, mrEnclave [32]byte, cpuSvn [16]byte, isvSvn uint16) []byte {
	t.Helper()
	buf := make([]byte, minQuoteLen)
	copy(buf[cpuSvnOffset:cpuSvnOffset+cpuSvnLen], cpuSvn[:])
	buf[isvSvnOffset] = byte(isvSvn)
	buf[isvSvnOffset+1] = byte(isvSvn >> 8)
	copy(buf[mrEnclaveOffset:mrEnclaveOffset+mrEnclaveLen], mrEnclave[:])
	copy(buf[mrSignerOffset:mrSignerOffset+mrSignerLen], mrSigner[:])
	copy(buf[reportDataOffset:reportDataOffset+reportDataLen], reportData[:])
	return buf
}

// testFixture bundles a happy-path attestation certificate and the
// pieces needed to tamper with it for negative test cases.
type testFixture struct {
	rootPEM    []byte
	rootCert   *x509.Certificate
	rootKey    *rsa.PrivateKey
	leafDER    []byte
	leafKey    *ecdsa.PrivateKey
	envelope   []byte
	reportData [64]byte
	mrSigner   [32]byte
	mrEnclave  [32]byte
	cpuSvn     [16]byte
	isvSvn     uint16
	now        time.Time
}

// buildFixture constructs a self-signed RSA root (doubling as the
// attestation report's signing certificate) and a peer EC certificate
// whose subject public key is bound into the quote's report_data, with an
// attestation-report extension carrying a freshly signed envelope.
func buildFixture(t *testing.T) testFixture {
	t.Helper()

	rootKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate root key: %v", err)
	}
	// anchored at the wall clock (to the second, matching the report
	// timestamp's precision) so the TLS adapters, which sample time.Now(),
	// see the fixture inside its validity window
	now := time.Now().UTC().Truncate(time.Second)
	rootTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Test Attestation Signing CA"},
		NotBefore:    now.Add(-24 * time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
		BasicConstraintsValid: true,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		t.Fatalf("create root cert: %v", err)
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		t.Fatalf("parse root cert: %v", err)
	}
	rootPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: rootDER})

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate leaf key: %v", err)
	}
	ecdhPub, err := leafKey.PublicKey.ECDH()
	if err != nil {
		t.Fatalf("ecdh: %v", err)
	}
	pubBytes := ecdhPub.Bytes() // 65 bytes, 0x04 || X || Y

	var reportData [64]byte
	copy(reportData[:], pubBytes[1:])
	var mrSigner, mrEnclave [32]byte
	var cpuSvn [16]byte
	for i := range mrSigner {
		mrSigner[i] = byte(i + 1)
	}
	for i := range mrEnclave {
		mrEnclave[i] = byte(200 + i)
	}
	for i := range cpuSvn {
		cpuSvn[i] = byte(i)
	}
	isvSvn := uint16(5)

	quoteBytes := buildQuoteBytes(t, reportData, mrSigner, mrEnclave, cpuSvn, isvSvn)
	quoteB64 := base64.StdEncoding.EncodeToString(quoteBytes)

	bodyJSON := fmt.Sprintf(`{"timestamp":%q,"isv_enclave_quote_status":"OK","isv_enclave_quote_body":%q}`,
		now.UTC().Format("2006-01-02T15:04:05"), quoteB64)

	sum := sha256.Sum256([]byte(bodyJSON))
	signature, err := rsa.SignPKCS1v15(rand.Reader, rootKey, crypto.SHA256, sum[:])
	if err != nil {
		t.Fatalf("sign body: %v", err)
	}

	envelope := fmt.Sprintf(`{"body":%s,"signature":%s,"signing_cert":%s}`,
		jsonByteArray([]byte(bodyJSON)), jsonByteArray(signature), jsonByteArray(rootPEM))

	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "enclave.test"},
		NotBefore:    now.Add(-1 * time.Hour),
		NotAfter:     now.Add(1 * time.Hour),
		ExtraExtensions: []pkix.Extension{
			{Id: AttestationReportOID, Critical: false, Value: []byte(envelope)},
		},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, leafTemplate, &leafKey.PublicKey, leafKey)
	if err != nil {
		t.Fatalf("create leaf cert: %v", err)
	}

	return testFixture{
		rootPEM:    rootPEM,
		rootCert:   rootCert,
		rootKey:    rootKey,
		leafDER:    leafDER,
		leafKey:    leafKey,
		envelope:   []byte(envelope),
		reportData: reportData,
		mrSigner:   mrSigner,
		mrEnclave:  mrEnclave,
		cpuSvn:     cpuSvn,
		isvSvn:     isvSvn,
		now:        now,
	}
}

// buildLeafCert re-issues f's leaf certificate with extValue substituted
// for the attestation-report extension, leaving the subject key and
// validity window untouched.
func buildLeafCert(t *testing.T, f testFixture, extValue []byte) []byte {
	t.Helper()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "enclave.test"},
		NotBefore:    f.now.Add(-1 * time.Hour),
		NotAfter:     f.now.Add(1 * time.Hour),
		ExtraExtensions: []pkix.Extension{
			{Id: AttestationReportOID, Critical: false, Value: extValue},
		},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &f.leafKey.PublicKey, f.leafKey)
	if err != nil {
		t.Fatalf("create leaf cert: %v", err)
	}
	return der
}

// signBody RSA-PKCS1v15/SHA-256 signs bodyJSON under key, as the
// attestation service signs a report body.
func signBody(t *testing.T, key *rsa.PrivateKey, bodyJSON []byte) []byte {
	t.Helper()
	sum := sha256.Sum256(bodyJSON)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, sum[:])
	if err != nil {
		t.Fatalf("sign body: %v", err)
	}
	return sig
}

// buildEnvelope renders the JSON envelope shape (body/signature/signing_cert
// as JSON arrays of byte values) for the given parts.
func buildEnvelope(body, signature, signingCertPEM []byte) []byte {
	return []byte(fmt.Sprintf(`{"body":%s,"signature":%s,"signing_cert":%s}`,
		jsonByteArray(body), jsonByteArray(signature), jsonByteArray(signingCertPEM)))
}

func (f testFixture) config() Config {
	return Config{
		SigningCACertPEM:          f.rootPEM,
		ValidEnclaveQuoteStatuses: DefaultValidEnclaveQuoteStatuses,
		ReportValiditySecs:        86400,
	}
}
