package auth

// View identifies a navigable screen guarded by the gate.
type View string

const (
	ViewLogin             View = "login"
	ViewRegister          View = "register"
	ViewVisitRegistration View = "visit-registration"
	ViewVisits            View = "visits"
	ViewPatientVisits     View = "patient-visits"
	ViewSystem            View = "system"
)

// Decision is the gate's verdict for one view. Denied access always carries
// a redirect target rather than an error.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Evaluate is a pure function of session state. Unauthenticated users may
// reach only login and registration; authenticated professionals reach every
// protected view except the administrative approval panel; administrators
// reach everything. Authenticated users are bounced off login/registration
// back to the home view.
func Evaluate(authenticated bool, role string, view View) Decision {
	switch view {
	case ViewLogin, ViewRegister:
		if authenticated {
			return Decision{RedirectTo: "/"}
		}
		return Decision{Allowed: true}
	case ViewSystem:
		if !authenticated {
			return Decision{RedirectTo: "/login"}
		}
		if role != RoleAdmin {
			return Decision{RedirectTo: "/"}
		}
		return Decision{Allowed: true}
	default:
		if !authenticated {
			return Decision{RedirectTo: "/login"}
		}
		return Decision{Allowed: true}
	}
}
