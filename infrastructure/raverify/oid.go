package raverify

import "encoding/asn1"

// AttestationReportOID identifies the X.509 extension that carries the
// JSON-encoded attestation report envelope. It is treated as an opaque
// constant shared by every service that issues or verifies attested
// certificates in this deployment.
var AttestationReportOID = asn1.ObjectIdentifier{1, 2, 840, 113741, 1, 337, 6}
