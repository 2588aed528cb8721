package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"administrador":   RoleAdministrator,
		"Administrador":   RoleAdministrator,
		" ADMINISTRADOR ": RoleAdministrator,
		"admin":           RoleAdministrator,
		"ADMIN":           RoleAdministrator,
		"empleado":        RoleEmployee,
		"Empleado":        RoleEmployee,
		"cliente":         RoleClient,
		"CLIENTE":         RoleClient,
		"":                RoleUnknown,
		"gerente":         RoleUnknown,
		"administrator":   RoleAdministrator,
		"Administrator":   RoleAdministrator,
		"adminx":          RoleUnknown,
	}

	for raw, want := range tests {
		if got := ParseRole(raw); got != want {
			t.Errorf("ParseRole(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestRoleHome(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"administrador", PathAdminHome},
		{"Admin", PathAdminHome},
		{"administrator", PathAdminHome},
		{"empleado", PathEmployeeHome},
		{"CLIENTE", PathClientHome},
		{"", PathLogin},
		{"supervisor", PathLogin},
	}

	for _, tt := range tests {
		if got := RoleHome(ParseRole(tt.raw)); got != tt.want {
			t.Errorf("RoleHome(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestRole_String(t *testing.T) {
	if RoleAdministrator.String() != RoleTagAdministrator {
		t.Fatalf("unexpected tag %q", RoleAdministrator.String())
	}
	if RoleUnknown.String() != "" || RoleUnknown.Label() != "unknown" {
		t.Fatalf("unexpected unknown role rendering")
	}
	if ParseRole(RoleEmployee.String()) != RoleEmployee {
		t.Fatalf("employee tag does not round-trip")
	}
}
