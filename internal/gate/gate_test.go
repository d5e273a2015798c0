package gate

import (
	"net/http/httptest"
	"testing"
)

func TestGate_Check(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		input   string
		want    bool
		message string
	}{
		{"Empty input", RoleTeacher, "", false, "Please enter the password."},
		{"Whitespace only", RoleOrganizer, "  \t ", false, "Please enter the password."},
		{"Wrong teacher password", RoleTeacher, "nope", false, "Incorrect teacher password."},
		{"Wrong organizer password", RoleOrganizer, "nope", false, "Incorrect organizer password."},
		{"Correct after trim", RoleTeacher, "  secret  ", true, ""},
		{"Case sensitive", RoleTeacher, "SECRET", false, "Incorrect teacher password."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.role, "secret").Check(tt.input)
			if got.Revealed != tt.want {
				t.Errorf("Revealed = %v, want %v", got.Revealed, tt.want)
			}
			if got.Message != tt.message {
				t.Errorf("Message = %q, want %q", got.Message, tt.message)
			}
		})
	}
}

// The reveal cookie is a convenience flag: any client can forge it, and a
// request carrying it is treated as revealed without a password.
func TestGate_CookieIsNotAuthentication(t *testing.T) {
	g := New(RoleTeacher, "secret")

	req := httptest.NewRequest("GET", "/teacher", nil)
	if g.Revealed(req) {
		t.Fatal("fresh request should not be revealed")
	}

	req.AddCookie(g.RevealCookie())
	if !g.Revealed(req) {
		t.Error("request with reveal cookie should be revealed")
	}
}

func TestSet_Lookup(t *testing.T) {
	s := NewSet("t", "o")
	if g, ok := s.Lookup("organizer"); !ok || g.Password != "o" {
		t.Errorf("organizer gate not found: %+v", g)
	}
	if _, ok := s.Lookup("student"); ok {
		t.Error("student has no gate")
	}
}
