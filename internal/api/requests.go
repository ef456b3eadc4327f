package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request limits.
const (
	MaxBodyBytes   = 64 << 10
	MaxHabits      = 200
	MaxHabitLength = 500
)

var validate = validator.New()

// recommendRequest is the validated form of a recommend body.
type recommendRequest struct {
	Habits []string `validate:"max=200,dive,max=500"`
}

// statsRequest holds the query parameters of the history endpoints.
type statsRequest struct {
	Limit    int    `validate:"min=0,max=10000"`
	Strategy string `validate:"omitempty,oneof=random novel fallback_unused fallback_any"`
	Since    string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// validateRequest runs struct validation and flattens the failures into one
// message.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
