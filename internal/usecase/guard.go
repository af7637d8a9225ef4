package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// requireOwner enforces that ctx acts for accountID (IDOR prevention).
func requireOwner(ctx context.Context, accountID string) error {
	ctxAccountID, ok := domain.AccountIDFrom(ctx)
	if !ok {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxAccountID != accountID {
		return apperror.Forbidden("You can only access your own profile")
	}
	return nil
}

// validateForm runs the struct rules. Field errors travel inside a 400 AppError
// so views can render them next to each input.
func validateForm(v *validator.Validate, form interface{}) error {
	if err := v.Struct(form); err != nil {
		if fe := validation.ToFieldErrors(err); fe != nil {
			return apperror.New(400, "Please correct the highlighted fields", fe)
		}
		return apperror.BadRequest(err.Error())
	}
	return nil
}

// storeError classifies a repository failure. Missing rows pass through unchanged.
func storeError(msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Unavailable(msg, err)
}

func parseYears(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, apperror.New(400, "Please correct the highlighted fields",
			validation.FieldErrors{"years_experience": "Years of experience must be a whole number of 0 or more"})
	}
	return &n, nil
}

func normalizeSkills(skills []string) []string {
	var set domain.SkillSet
	for _, s := range skills {
		set = set.Add(s)
	}
	return []string(set)
}
