package recommend

import (
	"fmt"

	"github.com/cognicore/habitual/pkg/habitual/internalerr"
)

// ParseHabits converts a decoded JSON value into a habit list.
// A missing value (nil) is an empty list. Anything other than a list of
// strings fails with internalerr.ErrInvalidInput.
func ParseHabits(v interface{}) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, list...), nil
	case []interface{}:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: habits[%d] is %T, want string", internalerr.ErrInvalidInput, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: habits is %T, want a list of strings", internalerr.ErrInvalidInput, v)
	}
}
