// Package gate reveals the teacher and organizer panels when the configured
// shared password is entered.
//
// A Gate is a UI reveal convenience, not access control. The password is a
// plain configured string, and the cookie set after a successful check is
// neither signed nor secret; anyone can set it. Nothing confidential should
// sit behind a Gate.
package gate

import (
	"net/http"
	"strings"
)

// Role names a gated panel.
type Role string

const (
	RoleTeacher   Role = "teacher"
	RoleOrganizer Role = "organizer"
)

// MessageEmpty is shown when nothing was entered.
const MessageEmpty = "Please enter the password."

// Result is the outcome of one check.
type Result struct {
	Revealed bool   `json:"revealed"`
	Message  string `json:"message"`
}

// Gate compares input against one configured password.
type Gate struct {
	Role     Role
	Password string
}

// New returns a gate for role.
func New(role Role, password string) *Gate {
	return &Gate{Role: role, Password: password}
}

// Check trims input and compares it with the password. Empty input is
// rejected without a comparison.
func (g *Gate) Check(input string) Result {
	pw := strings.TrimSpace(input)
	if pw == "" {
		return Result{Message: MessageEmpty}
	}
	if pw != g.Password {
		return Result{Message: g.mismatchMessage()}
	}
	return Result{Revealed: true}
}

func (g *Gate) mismatchMessage() string {
	return "Incorrect " + string(g.Role) + " password."
}

// CookieName is the cookie that remembers a revealed panel.
func (g *Gate) CookieName() string {
	return "revealed_" + string(g.Role)
}

// RevealCookie marks the panel as revealed for the browser session.
func (g *Gate) RevealCookie() *http.Cookie {
	return &http.Cookie{
		Name:     g.CookieName(),
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Revealed reports whether r carries the reveal cookie.
func (g *Gate) Revealed(r *http.Request) bool {
	c, err := r.Cookie(g.CookieName())
	return err == nil && c.Value == "1"
}

// Set holds the gates by role.
type Set map[Role]*Gate

// NewSet builds the teacher and organizer gates.
func NewSet(teacherPassword, organizerPassword string) Set {
	return Set{
		RoleTeacher:   New(RoleTeacher, teacherPassword),
		RoleOrganizer: New(RoleOrganizer, organizerPassword),
	}
}

// Lookup returns the gate for a role name.
func (s Set) Lookup(role string) (*Gate, bool) {
	g, ok := s[Role(role)]
	return g, ok
}
