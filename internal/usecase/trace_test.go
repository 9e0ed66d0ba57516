package usecase

import (
	"context"
	"testing"
)

func TestIsLoopTick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "usecase.TransactionPoller.Tick", want: true},
		{in: "usecase.TokenRefresher.Tick", want: true},
		{in: "usecase.PollCoordinator.Start", want: false},
		{in: "usecase.Gateway.Standings", want: false},
	}
	for _, tt := range tests {
		if got := isLoopTick(tt.in); got != tt.want {
			t.Fatalf("isLoopTick(%q)=%v want=%v", tt.in, got, tt.want)
		}
	}
}

func TestStartUsecaseSpan_WithoutParentIsNoopOutsideTicks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.Gateway.Standings")
	defer span.End()
	if got != ctx || span.SpanContext().IsValid() {
		t.Fatalf("expected no span without a parent")
	}
}
