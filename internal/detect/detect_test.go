package detect

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAggregates struct {
	failedByIP map[string]int
	rapid      map[string]int
	err        error

	gotIPFloor    int
	gotRapidFloor int
}

func (f *fakeAggregates) GetFailedAttemptsByIP(_ context.Context, _, _ time.Time, minCount int) (map[string]int, error) {
	f.gotIPFloor = minCount
	return f.failedByIP, f.err
}

func (f *fakeAggregates) GetRapidLoginAttempts(_ context.Context, _, _ time.Time, minCount int) (map[string]int, error) {
	f.gotRapidFloor = minCount
	return f.rapid, f.err
}

func detectWindow(t *testing.T, agg *fakeAggregates) []Alert {
	t.Helper()
	svc, err := New(agg)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	alerts, err := svc.GetSuspiciousActivity(context.Background(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return alerts
}

func TestNewRequiresReader(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}

func TestBruteForceCriticalAtFifty(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{failedByIP: map[string]int{"hash-a": 50}})

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	got := alerts[0]
	if got.Type != ActivityBruteForce || got.Count != 50 || got.Severity != SeverityCritical || got.Key != "hash-a" {
		t.Fatalf("unexpected alert: %+v", got)
	}
}

func TestBruteForceMediumAtFifteen(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{failedByIP: map[string]int{"hash-a": 15}})

	if len(alerts) != 1 || alerts[0].Severity != SeverityMedium {
		t.Fatalf("expected one medium alert, got %+v", alerts)
	}
}

func TestRapidAttemptsBandsDifferFromBruteForce(t *testing.T) {
	// Same count range, different band: 15 rapid attempts on one account is
	// High, while 15 failed logins from one address is only Medium.
	alerts := detectWindow(t, &fakeAggregates{
		failedByIP: map[string]int{"hash-a": 15},
		rapid:      map[string]int{"victim@example.com": 15},
	})

	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Type != ActivityRapidAttempts || alerts[0].Severity != SeverityHigh {
		t.Fatalf("expected rapid-attempt High first, got %+v", alerts[0])
	}
	if alerts[1].Type != ActivityBruteForce || alerts[1].Severity != SeverityMedium {
		t.Fatalf("expected brute-force Medium second, got %+v", alerts[1])
	}
}

func TestRapidAttemptsCriticalAtFifty(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{rapid: map[string]int{"victim@example.com": 50}})

	if len(alerts) != 1 || alerts[0].Severity != SeverityCritical || alerts[0].Type != ActivityRapidAttempts {
		t.Fatalf("expected one critical rapid-attempt alert, got %+v", alerts)
	}
}

func TestAlertsOrderedBySeverityThenCount(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{
		failedByIP: map[string]int{"h1": 50, "h2": 10, "h3": 5},
	})

	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	wantSeverity := []Severity{SeverityCritical, SeverityMedium, SeverityLow}
	wantCount := []int{50, 10, 5}
	for i := range alerts {
		if alerts[i].Severity != wantSeverity[i] || alerts[i].Count != wantCount[i] {
			t.Fatalf("alert %d: got %+v, want severity %v count %d", i, alerts[i], wantSeverity[i], wantCount[i])
		}
	}
}

func TestCountTieBreaksWithinSeverity(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{
		failedByIP: map[string]int{"h1": 12, "h2": 30},
		rapid:      map[string]int{"a@example.com": 11, "b@example.com": 40},
	})

	// High band outranks Medium regardless of count; within a severity the
	// larger count sorts first.
	if alerts[0].Count != 40 || alerts[1].Count != 11 {
		t.Fatalf("expected rapid-attempt alerts (High) first ordered by count, got %+v", alerts)
	}
	if alerts[2].Count != 30 || alerts[3].Count != 12 {
		t.Fatalf("expected brute-force alerts (Medium) ordered by count, got %+v", alerts)
	}
}

func TestThresholdFloorsForwardedToPort(t *testing.T) {
	agg := &fakeAggregates{}
	detectWindow(t, agg)

	if agg.gotIPFloor != FailedAttemptFloor {
		t.Fatalf("expected failed-attempt floor %d, got %d", FailedAttemptFloor, agg.gotIPFloor)
	}
	if agg.gotRapidFloor != RapidAttemptFloor {
		t.Fatalf("expected rapid-attempt floor %d, got %d", RapidAttemptFloor, agg.gotRapidFloor)
	}
}

func TestReadFailurePropagates(t *testing.T) {
	svc, _ := New(&fakeAggregates{err: errors.New("store down")})

	if _, err := svc.GetSuspiciousActivity(context.Background(), time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatalf("expected read failure to propagate")
	}
}

func TestEmptyAggregatesYieldNoAlerts(t *testing.T) {
	alerts := detectWindow(t, &fakeAggregates{})
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}
