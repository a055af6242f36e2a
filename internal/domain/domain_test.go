package domain

import "testing"

func TestParseStoredUser(t *testing.T) {
	u := StoredUser{Type: UserEmployee, Email: "a@a", Status: "connected"}
	if got := ParseStoredUser(u.Encode()); got != u {
		t.Errorf("ParseStoredUser(Encode()) = %+v, want %+v", got, u)
	}
	for _, raw := range []string{"", "  ", "{", `"a@a"`} {
		if got := ParseStoredUser(raw); got.Recognized() {
			t.Errorf("ParseStoredUser(%q) recognised as %+v", raw, got)
		}
	}
	if (StoredUser{Type: "Guest"}).Recognized() {
		t.Error("unknown type recognised")
	}
}

func TestRoutePath(t *testing.T) {
	if got := RouteNewBill.Path(); got != "/employee/bill/new" {
		t.Errorf("RouteNewBill.Path() = %q", got)
	}
	if got := Route("Unknown").Path(); got != "/" {
		t.Errorf("unknown route path = %q, want /", got)
	}
}

func TestBillStatusLabel(t *testing.T) {
	tests := map[BillStatus]string{
		StatusPending:  "En attente",
		StatusAccepted: "Accepté",
		StatusRefused:  "Refused",
	}
	for s, want := range tests {
		if got := s.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", s, got, want)
		}
	}
}
