package domain

import "testing"

func TestPermissionName(t *testing.T) {
	if got := PermissionName("Registration", ActionUpdate); got != "Registration.Update" {
		t.Fatalf("expected Registration.Update, got %q", got)
	}
}

func TestCRUDActionValid(t *testing.T) {
	for _, action := range []CRUDAction{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		if !action.Valid() {
			t.Fatalf("expected %q valid", action)
		}
	}
	if CRUDAction("Approve").Valid() {
		t.Fatal("expected Approve invalid")
	}
	if CRUDAction("").Valid() {
		t.Fatal("expected empty action invalid")
	}
}

func TestCategoryOf(t *testing.T) {
	cases := map[string]string{
		"Registration.Approve": "Registration",
		"Localization.Read":    "Localization",
		"Standalone":           "Standalone",
	}
	for systemName, want := range cases {
		if got := CategoryOf(systemName); got != want {
			t.Fatalf("CategoryOf(%q) = %q, want %q", systemName, got, want)
		}
	}
}

func TestPermissionManifestHasNoDuplicates(t *testing.T) {
	seen := make(map[string]struct{})
	for _, systemName := range PermissionManifest() {
		if _, dup := seen[systemName]; dup {
			t.Fatalf("duplicate manifest entry %q", systemName)
		}
		seen[systemName] = struct{}{}
	}
}

func TestDefaultRoleTemplatesReferenceManifest(t *testing.T) {
	declared := make(map[string]struct{})
	for _, systemName := range PermissionManifest() {
		declared[systemName] = struct{}{}
	}

	for _, template := range DefaultRoleTemplates() {
		for _, systemName := range template.PermissionSystemNames {
			if _, ok := declared[systemName]; !ok {
				t.Fatalf("template %q references undeclared permission %q", template.RoleSystemName, systemName)
			}
		}
	}
}
