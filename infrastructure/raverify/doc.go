// Package raverify verifies TLS peer certificates that carry an embedded
// Intel SGX remote-attestation report, binding the attested enclave's
// report data to the certificate's subject public key.
//
// A Verifier is built once from a Config and then shared, read-only,
// across every TLS handshake: VerifyCert has no side effects beyond the
// optional audit/metrics/cache collaborators and never mutates the
// Verifier itself.
package raverify
