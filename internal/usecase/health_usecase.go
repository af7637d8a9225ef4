package usecase

import (
	"context"
	"time"
)

// Checker is one dependency probe. A nil error means healthy.
type Checker func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]Checker
}

// NewHealthUsecase probes each named dependency. Nil checkers are reported as "disabled".
func NewHealthUsecase(checks map[string]Checker) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		if check == nil {
			status[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
