package raverify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

// AuditRecord is one row of the verification audit trail. Record does not
// fill QuoteStatus (CertVerifyResult carries no quote status), so that
// column is always written as the empty string.
type AuditRecord struct {
	PublicKeyHash string    `db:"public_key_hash"`
	QuoteStatus   string    `db:"quote_status"`
	MrSigner      string    `db:"mr_signer"`
	MrEnclave     string    `db:"mr_enclave"`
	Accepted      bool      `db:"accepted"`
	ErrorCode     string    `db:"error_code"`
	VerifiedAt    time.Time `db:"verified_at"`
}

// AuditStore persists one AuditRecord per VerifyCert call to Postgres.
// It is an optional collaborator wired in through Hooks, never on the
// hot verification path's control flow.
type AuditStore struct {
	db *sqlx.DB
}

// NewAuditStore opens a Postgres connection pool and ensures the
// raverify_audit table exists.
func NewAuditStore(ctx context.Context, dsn string) (*AuditStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect audit store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS raverify_audit (
	id              BIGSERIAL PRIMARY KEY,
	public_key_hash TEXT NOT NULL,
	quote_status    TEXT NOT NULL DEFAULT '',
	mr_signer       TEXT NOT NULL DEFAULT '',
	mr_enclave      TEXT NOT NULL DEFAULT '',
	accepted        BOOLEAN NOT NULL,
	error_code      TEXT NOT NULL DEFAULT '',
	verified_at     TIMESTAMPTZ NOT NULL
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create raverify_audit table: %w", err)
	}

	return &AuditStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *AuditStore) Close() error { return s.db.Close() }

// Record appends one verification outcome. result is nil on failure.
func (s *AuditStore) Record(ctx context.Context, now time.Time, result *CertVerifyResult, verifyErr error) error {
	rec := AuditRecord{Accepted: verifyErr == nil, VerifiedAt: now}

	if result != nil {
		sum := sha256.Sum256(result.PublicKey)
		rec.PublicKeyHash = hex.EncodeToString(sum[:])
		rec.MrSigner = hex.EncodeToString(result.Quote.ReportBody.Measurement.MrSigner[:])
		rec.MrEnclave = hex.EncodeToString(result.Quote.ReportBody.Measurement.MrEnclave[:])
	}
	if se, ok := asServiceError(verifyErr); ok {
		rec.ErrorCode = string(se.Code)
	}

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO raverify_audit (public_key_hash, quote_status, mr_signer, mr_enclave, accepted, error_code, verified_at)
VALUES (:public_key_hash, :quote_status, :mr_signer, :mr_enclave, :accepted, :error_code, :verified_at)`, rec)
	return err
}

// RecentFailures returns the most recent rejected verifications, newest first.
func (s *AuditStore) RecentFailures(ctx context.Context, limit int) ([]AuditRecord, error) {
	var out []AuditRecord
	err := s.db.SelectContext(ctx, &out, `
SELECT public_key_hash, quote_status, mr_signer, mr_enclave, accepted, error_code, verified_at
FROM raverify_audit
WHERE accepted = false
ORDER BY verified_at DESC
LIMIT $1`, limit)
	return out, err
}

// Hook returns a Hooks.OnResult function that records every verification.
// Failures to write the audit row are swallowed: the verifier's result to
// the caller must never depend on an optional observability sink.
func (s *AuditStore) Hook() func(now time.Time, result *CertVerifyResult, err error) {
	return func(now time.Time, result *CertVerifyResult, err error) {
		_ = s.Record(context.Background(), now, result, err)
	}
}
