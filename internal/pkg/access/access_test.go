package access

import (
	"context"
	"errors"
	"testing"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleViewer, ActionRead, true},
		{RoleViewer, ActionWrite, false},
		{RoleEditor, ActionWrite, true},
		{RoleEditor, ActionManage, false},
		{RoleAdmin, ActionManage, true},
		{Role("ghost"), ActionRead, false},
	}
	for _, tt := range tests {
		if got := (Context{Role: tt.role}).Can(tt.action); got != tt.want {
			t.Errorf("%s.Can(%s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestRequire(t *testing.T) {
	if err := (Context{Role: RoleEditor}).Require(ActionRead); !errors.Is(err, ErrNoOrganization) {
		t.Fatalf("expected ErrNoOrganization, got %v", err)
	}
	if err := (Context{Role: RoleViewer, OrganizationID: "o"}).Require(ActionWrite); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := (Context{Role: RoleAdmin, OrganizationID: "o"}).Require(ActionManage); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ac := Context{UserID: "u", Role: ParseRole(" Editor "), OrganizationID: "o"}
	got, ok := From(With(context.Background(), ac))
	if !ok || got != ac {
		t.Fatalf("From = %+v, %v", got, ok)
	}
	if _, ok := From(context.Background()); ok {
		t.Fatal("empty context should not carry access")
	}
}
