package raverify

import (
	"encoding/hex"
	"time"

	"github.com/R3E-Network/service_layer/infrastructure/logging"
)

// LoggingHook returns a Hooks.OnResult function that logs every
// verification outcome through logger: debug on success, warn (naming
// the typed error code) on failure. Per §5, raw public keys are only
// included when logPublicKeys is true; signatures and report bodies are
// never logged.
func LoggingHook(logger *logging.Logger, logPublicKeys bool) func(now time.Time, result *CertVerifyResult, err error) {
	return func(_ time.Time, result *CertVerifyResult, err error) {
		if err != nil {
			fields := map[string]interface{}{"error": err.Error()}
			if se, ok := asServiceError(err); ok {
				fields["error_code"] = string(se.Code)
			}
			logger.WithFields(fields).Warn("raverify: certificate verification rejected")
			return
		}

		fields := map[string]interface{}{
			"mr_signer":  hex.EncodeToString(result.Quote.ReportBody.Measurement.MrSigner[:]),
			"mr_enclave": hex.EncodeToString(result.Quote.ReportBody.Measurement.MrEnclave[:]),
		}
		if logPublicKeys {
			fields["public_key"] = hex.EncodeToString(result.PublicKey)
		}
		logger.WithFields(fields).Debug("raverify: certificate verification accepted")
	}
}
