package session

import "testing"

func TestAnonymous(t *testing.T) {
	s := Anonymous()

	if s.Present {
		t.Error("anonymous session must not be present")
	}

	if !s.IsAnonymous() {
		t.Error("anonymous session must report IsAnonymous")
	}

	if s.Admin() {
		t.Error("anonymous session must not be admin")
	}

	if s.IsSelf("u1") {
		t.Error("anonymous session must not match any item")
	}
}

func TestAdmin(t *testing.T) {
	if !New("u1", true, true).Admin() {
		t.Error("admin session should report Admin")
	}

	if New("u1", false, true).Admin() {
		t.Error("non-admin session should not report Admin")
	}

	// A forged session value with the admin flag but no present tag must not
	// count as admin.
	if (Session{IsAdmin: true}).Admin() {
		t.Error("absent session must not be admin even with the flag set")
	}
}

func TestIsSelf(t *testing.T) {
	s := New("u1", false, true)

	if !s.IsSelf("u1") {
		t.Error("session should match its own item")
	}

	if s.IsSelf("u2") {
		t.Error("session must not match another item")
	}

	if s.IsSelf("") {
		t.Error("empty item id must never match")
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		session Session
		want    string
	}{
		{Anonymous(), "anonymous"},
		{New("u1", false, true), "user:u1"},
		{New("u2", true, true), "admin:u2"},
	}

	for _, tc := range cases {
		if got := tc.session.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
