package aggregates

import (
	"strings"
	"time"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// DefaultSlowWrite is the Execute duration above which a write is logged.
const DefaultSlowWrite = 500 * time.Millisecond

const (
	opOther       = "other"
	statusFailure = "failure"
	maxOpLabelLen = 64
)

// Hooks receives one ObserveOperation per Execute call, named after the
// calling operation (for example "PlaceService.DeletePlace"), plus a conflict
// or retry signal when the write failed with that code.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
	log     *logger.Logger
	slow    time.Duration
}

// NewObservabilityHooks reports Execute outcomes to metrics. With a logger,
// writes slower than slow (DefaultSlowWrite when zero) and commit conflicts
// are also logged. Both arguments may be nil.
func NewObservabilityHooks(metrics *observability.Metrics, log *logger.Logger, slow time.Duration) Hooks {
	if metrics == nil && log == nil {
		return noopHooks{}
	}
	if slow <= 0 {
		slow = DefaultSlowWrite
	}
	h := &observabilityHooks{metrics: metrics, slow: slow}
	if log != nil {
		h.log = log.With("component", "EntityStoreHooks")
	}
	return h
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	name, status = operationLabel(name), statusLabel(status)
	h.metrics.ObserveAggregateOperation(name, status, dur)
	if h.log != nil && dur >= h.slow {
		h.log.Warn("slow entity store write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *observabilityHooks) IncConflict(name string) {
	name = operationLabel(name)
	h.metrics.IncAggregateConflict(name)
	if h.log != nil {
		h.log.Debug("entity store write conflicted", "op", name)
	}
}

func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(operationLabel(name))
}

// operationLabel accepts "Service.Method" style names and folds anything
// else into "other" so a caller cannot mint unbounded label values.
func operationLabel(name string) string {
	name = strings.TrimSpace(name)
	svc, method, ok := strings.Cut(name, ".")
	if !ok || len(name) > maxOpLabelLen || !identLike(svc) || !identLike(method) {
		return opOther
	}
	return name
}

func identLike(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// statusLabel keeps "success" and the aggregate error codes.
func statusLabel(status string) string {
	status = strings.TrimSpace(status)
	switch domainagg.ErrorCode(status) {
	case domainagg.CodeValidation, domainagg.CodeNotFound, domainagg.CodeAuthorization,
		domainagg.CodeUnauthenticated, domainagg.CodeConflict, domainagg.CodeUnavailable,
		domainagg.CodeIO, domainagg.CodeUpstream, domainagg.CodeInvariantViolation, domainagg.CodeInternal:
		return status
	}
	if status == "success" {
		return status
	}
	return statusFailure
}
