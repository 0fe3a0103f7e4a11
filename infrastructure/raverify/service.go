package raverify

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminServer exposes read-only operational visibility into a Verifier:
// whether it is constructed and healthy, and (when an AuditStore is
// wired in) its most recent rejected verifications. It never sits on the
// attested-handshake hot path.
type AdminServer struct {
	verifier *Verifier
	audit    *AuditStore
	engine   *gin.Engine
}

// NewAdminServer builds the admin HTTP surface. audit may be nil.
func NewAdminServer(verifier *Verifier, audit *AuditStore) *AdminServer {
	gin.SetMode(gin.ReleaseMode)
	s := &AdminServer{verifier: verifier, audit: audit, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/raverify/health", s.handleHealth)
	s.engine.GET("/raverify/recent-failures", s.handleRecentFailures)
	return s
}

// Handler returns the admin surface as an http.Handler for embedding into
// a larger process's mux.
func (s *AdminServer) Handler() http.Handler { return s.engine }

func (s *AdminServer) handleHealth(c *gin.Context) {
	if s.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "uninitialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *AdminServer) handleRecentFailures(c *gin.Context) {
	if s.audit == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit store not configured"})
		return
	}
	failures, err := s.audit.RecentFailures(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"failures": failures})
}
