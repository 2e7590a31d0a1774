package aggregates

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

func TestOperationLabel(t *testing.T) {
	cases := map[string]string{
		"PlaceService.CreatePlace": "PlaceService.CreatePlace",
		" UserService.Signup ":     "UserService.Signup",
		"aggregate.write":          "aggregate.write",
		"PlaceService":             opOther,
		"places/123.delete":        opOther,
		"PlaceService.":            opOther,
		"":                         opOther,
	}
	for in, want := range cases {
		if got := operationLabel(in); got != want {
			t.Fatalf("operationLabel(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	for in, want := range map[string]string{
		"success":             "success",
		"conflict":            "conflict",
		"invariant_violation": "invariant_violation",
		"failure":             statusFailure,
		"boom":                statusFailure,
	} {
		if got := statusLabel(in); got != want {
			t.Fatalf("statusLabel(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestObservabilityHooksRecordPlaceWrites(t *testing.T) {
	m := observability.New()
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	hooks := NewObservabilityHooks(m, log, 50*time.Millisecond)

	hooks.ObserveOperation("PlaceService.CreatePlace", "success", time.Millisecond)
	hooks.ObserveOperation("PlaceService.DeletePlace", "conflict", 80*time.Millisecond)
	hooks.IncConflict("PlaceService.DeletePlace")
	hooks.ObserveOperation("not a name", "weird", time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(), "placeshare_aggregate_operations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 3 {
		t.Fatalf("operation series: want=3 got=%d", n)
	}
	if got := logs.FilterMessage("slow entity store write").Len(); got != 1 {
		t.Fatalf("slow write logs: want=1 got=%d", got)
	}
}

func TestObservabilityHooksWithoutSinksIsNoop(t *testing.T) {
	if _, ok := NewObservabilityHooks(nil, nil, 0).(noopHooks); !ok {
		t.Fatalf("expected noop hooks")
	}
}
