package prompts

import (
	"fmt"
	"strings"
	"time"
)

type Validator func(Input) error

func RequireNonEmpty(field string, get func(Input) string) Validator {
	return func(in Input) error {
		if get == nil {
			return fmt.Errorf("validator for %s: getter is nil", field)
		}
		if strings.TrimSpace(get(in)) == "" {
			return fmt.Errorf("%s required", field)
		}
		return nil
	}
}

func RequirePositive(field string, get func(Input) int) Validator {
	return func(in Input) error {
		if get == nil {
			return fmt.Errorf("validator for %s: getter is nil", field)
		}
		if get(in) <= 0 {
			return fmt.Errorf("%s must be positive", field)
		}
		return nil
	}
}

// RequireISODate rejects dates the model could misread; every date placed in
// a prompt is rendered as YYYY-MM-DD before building.
func RequireISODate(field string, get func(Input) string) Validator {
	return func(in Input) error {
		if get == nil {
			return fmt.Errorf("validator for %s: getter is nil", field)
		}
		v := strings.TrimSpace(get(in))
		if v == "" {
			return fmt.Errorf("%s required", field)
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Errorf("%s must be an ISO date (YYYY-MM-DD): %q", field, v)
		}
		return nil
	}
}
