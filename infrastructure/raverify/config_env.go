package raverify

import (
	raconfig "github.com/R3E-Network/service_layer/infrastructure/config"
	"github.com/R3E-Network/service_layer/infrastructure/marble"
)

// Environment/Marble-secret keys consulted by LoadVerifierConfigFromEnv.
const (
	envRootCACertPEM     = "RAVERIFY_ROOT_CA_CERT_PEM"
	envReportValiditySec = "RAVERIFY_REPORT_VALIDITY_SECS"
	envLogPublicKeys     = "RAVERIFY_LOG_PUBLIC_KEYS"

	defaultReportValiditySecs = int64(86400)
)

// DefaultConfig returns the configuration used by Default(): Intel SGX IAS
// statuses OK and CONFIGURATION_AND_SW_HARDENING_NEEDED accepted, a 24h
// freshness window, no enclave-identity pinning, loaded from environment
// variables only (no Marble instance is consulted; actual
// file/config-service loading is an external collaborator, out of scope
// per §1).
func DefaultConfig() Config {
	cfg, err := LoadVerifierConfigFromEnv(nil)
	if err != nil {
		// The load error is dropped here. The returned Config has no
		// SigningCACertPEM, so New() (and therefore Default()) fails with
		// BadRootCert.
		return Config{
			ValidEnclaveQuoteStatuses: DefaultValidEnclaveQuoteStatuses,
			ReportValiditySecs:        defaultReportValiditySecs,
		}
	}
	return cfg
}

// LoadVerifierConfigFromEnv builds a Config the way every other Marble
// service in this repository loads its configuration: prefer a
// Coordinator-injected secret, fall back to an environment variable. m may
// be nil outside an enclave (simulation mode).
func LoadVerifierConfigFromEnv(m *marble.Marble) (Config, error) {
	rootPEM, err := raconfig.EnvOrSecretBytes(m, envRootCACertPEM)
	if err != nil {
		return Config{}, BadRootCert(err)
	}

	validitySecs := int64(raconfig.GetEnvInt(envReportValiditySec, int(defaultReportValiditySecs)))

	return Config{
		SigningCACertPEM:          rootPEM,
		ValidEnclaveQuoteStatuses: DefaultValidEnclaveQuoteStatuses,
		ReportValiditySecs:        validitySecs,
		LogPublicKeys:             raconfig.GetEnvBool(envLogPublicKeys, false),
	}, nil
}
