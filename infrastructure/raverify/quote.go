package raverify

import "encoding/binary"

// Fixed offsets of an Intel SGX QUOTE structure: a 48-byte header followed
// by a 384-byte REPORT_BODY. Only the fields this verifier needs are
// exposed; reserved regions are skipped.
const (
	quoteHeaderLen = 48

	cpuSvnOffset = quoteHeaderLen + 0
	cpuSvnLen    = 16

	isvSvnOffset = quoteHeaderLen + 258
	isvSvnLen    = 2

	mrEnclaveOffset = quoteHeaderLen + 64
	mrEnclaveLen    = 32

	mrSignerOffset = quoteHeaderLen + 128
	mrSignerLen    = 32

	reportDataOffset = quoteHeaderLen + 320
	reportDataLen    = 64

	// minQuoteLen is the shortest byte slice that still contains a full
	// report_body (we do not validate the quote signature/QE report that
	// follows it; this core only needs the fields above).
	minQuoteLen = reportDataOffset + reportDataLen
)

// Measurement identifies the code that produced an enclave.
type Measurement struct {
	MrSigner  [32]byte
	MrEnclave [32]byte
}

// ReportBody is the subset of an SGX QUOTE's report_body this verifier uses.
type ReportBody struct {
	CpuSvn      [16]byte
	IsvSvn      uint16
	Measurement Measurement
	ReportData  [64]byte
}

// Quote is the decoded binary structure from the hardware vendor.
type Quote struct {
	ReportBody ReportBody
	raw        []byte
}

// Raw returns the undecoded quote bytes, for audit logging.
func (q Quote) Raw() []byte { return q.raw }

// decodeQuote parses the fixed-layout fields of an SGX QUOTE. A slice
// shorter than the fixed layout yields QuoteParsingError at the caller.
func decodeQuote(b []byte) (Quote, error) {
	if len(b) < minQuoteLen {
		return Quote{}, errQuoteTooShort
	}

	var q Quote
	q.raw = append([]byte(nil), b...)
	copy(q.ReportBody.CpuSvn[:], b[cpuSvnOffset:cpuSvnOffset+cpuSvnLen])
	q.ReportBody.IsvSvn = binary.LittleEndian.Uint16(b[isvSvnOffset : isvSvnOffset+isvSvnLen])
	copy(q.ReportBody.Measurement.MrEnclave[:], b[mrEnclaveOffset:mrEnclaveOffset+mrEnclaveLen])
	copy(q.ReportBody.Measurement.MrSigner[:], b[mrSignerOffset:mrSignerOffset+mrSignerLen])
	copy(q.ReportBody.ReportData[:], b[reportDataOffset:reportDataOffset+reportDataLen])
	return q, nil
}

var errQuoteTooShort = quoteTooShortError{}

type quoteTooShortError struct{}

func (quoteTooShortError) Error() string { return "quote shorter than the fixed SGX report_body layout" }
