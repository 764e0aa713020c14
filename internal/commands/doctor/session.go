package doctor

import (
	"context"

	"github.com/hay-kot/calcam/internal/core/auth"
)

// SessionCheck reports whether a user is signed in.
type SessionCheck struct {
	auth *auth.Provider
}

// NewSessionCheck creates a new sign-in check.
func NewSessionCheck(provider *auth.Provider) *SessionCheck {
	return &SessionCheck{auth: provider}
}

func (c *SessionCheck) Name() string {
	return "Account"
}

func (c *SessionCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	s, err := c.auth.Current(ctx)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "Session", Status: StatusFail, Detail: err.Error()})
	case s == nil:
		result.Items = append(result.Items, CheckItem{Label: "Session", Status: StatusWarn, Detail: "not signed in; run 'calcam login'"})
	default:
		result.Items = append(result.Items, CheckItem{Label: "Session", Status: StatusPass, Detail: s.Email})
	}

	return result
}
