package raverify

import (
	"bytes"
	"time"
)

// QuoteStatus is an accepted IAS-style enclave quote status literal.
type QuoteStatus string

// Recognized quote status literals (§6). VerifierConfig's accepted set
// must be a subset of these; anything else fails construction.
const (
	StatusOK                                QuoteStatus = "OK"
	StatusConfigurationAndSWHardeningNeeded QuoteStatus = "CONFIGURATION_AND_SW_HARDENING_NEEDED"
	StatusGroupOutOfDate                    QuoteStatus = "GROUP_OUT_OF_DATE"
	StatusSWHardeningNeeded                 QuoteStatus = "SW_HARDENING_NEEDED"
	StatusConfigurationNeeded               QuoteStatus = "CONFIGURATION_NEEDED"
)

func isRecognizedStatus(s string) bool {
	switch QuoteStatus(s) {
	case StatusOK, StatusConfigurationAndSWHardeningNeeded, StatusGroupOutOfDate,
		StatusSWHardeningNeeded, StatusConfigurationNeeded:
		return true
	default:
		return false
	}
}

// EnclaveInfo is the expected enclave identity. A nil *EnclaveInfo means
// "any enclave accepted" modulo other policy (freshness, status).
type EnclaveInfo struct {
	MrSigner  [32]byte
	MrEnclave *[32]byte // nil means "don't check exact measurement"
	CpuSvn    [16]byte
	IsvSvn    uint16
}

// checkFreshness enforces body.timestamp + reportValiditySecs >= now. Only
// past staleness is rejected; a future timestamp is accepted (§4.3 note).
func checkFreshness(reportTime, now time.Time, reportValiditySecs int64) error {
	deadline := reportTime.Add(time.Duration(reportValiditySecs) * time.Second)
	if deadline.Before(now) {
		return OldAttestationReport()
	}
	return nil
}

// checkQuoteStatus enforces that the parsed status is in the accepted set.
func checkQuoteStatus(status string, accepted map[QuoteStatus]struct{}) error {
	if _, ok := accepted[QuoteStatus(status)]; !ok {
		return InvalidEnclaveQuoteStatus(status)
	}
	return nil
}

// checkEnclaveIdentity applies mr_signer/mr_enclave/cpu_svn/isv_svn policy.
// cpu_svn is compared lexicographically big-endian per-byte; isv_svn
// numerically. Both are "at least as patched as required" — a greater or
// equal SVN passes, equality is never a failure.
func checkEnclaveIdentity(info *EnclaveInfo, body ReportBody) error {
	if info == nil {
		return nil
	}

	if !bytes.Equal(info.MrSigner[:], body.Measurement.MrSigner[:]) {
		return MeasurementMismatch("mr_signer")
	}
	if info.MrEnclave != nil && !bytes.Equal(info.MrEnclave[:], body.Measurement.MrEnclave[:]) {
		return MeasurementMismatch("mr_enclave")
	}
	if bytes.Compare(info.CpuSvn[:], body.CpuSvn[:]) > 0 {
		return MeasurementMismatch("cpu_svn")
	}
	if info.IsvSvn > body.IsvSvn {
		return MeasurementMismatch("isv_svn")
	}
	return nil
}

// applyPolicy runs the freshness, status, and identity checks in order,
// returning the first failure (§4.3).
func applyPolicy(body AttestationReportBody, reportTime time.Time, now time.Time, reportValiditySecs int64, accepted map[QuoteStatus]struct{}, info *EnclaveInfo, quote Quote) error {
	if err := checkFreshness(reportTime, now, reportValiditySecs); err != nil {
		return err
	}
	if err := checkQuoteStatus(body.IsvEnclaveQuoteStatus, accepted); err != nil {
		return err
	}
	if err := checkEnclaveIdentity(info, quote.ReportBody); err != nil {
		return err
	}
	return nil
}
