package domain

// Permission system names declared by the application. The permission
// synchronizer consumes the flat Manifest below; nothing enumerates these
// constants at runtime.
const (
	PermissionInstitutionCreate = "Institution.Create"
	PermissionInstitutionRead   = "Institution.Read"
	PermissionInstitutionUpdate = "Institution.Update"
	PermissionInstitutionDelete = "Institution.Delete"

	PermissionRegistrationCreate  = "Registration.Create"
	PermissionRegistrationRead    = "Registration.Read"
	PermissionRegistrationUpdate  = "Registration.Update"
	PermissionRegistrationDelete  = "Registration.Delete"
	PermissionRegistrationSubmit  = "Registration.Submit"
	PermissionRegistrationApprove = "Registration.Approve"
	PermissionRegistrationReject  = "Registration.Reject"

	PermissionDocumentCreate = "Document.Create"
	PermissionDocumentRead   = "Document.Read"
	PermissionDocumentUpdate = "Document.Update"
	PermissionDocumentDelete = "Document.Delete"

	PermissionUserCreate = "User.Create"
	PermissionUserRead   = "User.Read"
	PermissionUserUpdate = "User.Update"
	PermissionUserDelete = "User.Delete"

	PermissionRoleCreate = "Role.Create"
	PermissionRoleRead   = "Role.Read"
	PermissionRoleUpdate = "Role.Update"
	PermissionRoleDelete = "Role.Delete"

	PermissionPermissionRead   = "Permission.Read"
	PermissionPermissionUpdate = "Permission.Update"

	PermissionLocalizationRead   = "Localization.Read"
	PermissionLocalizationUpdate = "Localization.Update"
)

// PermissionManifest returns the full list of declared permission system
// names. The permission synchronizer inserts any entry missing from the
// catalog; entries removed from this list are never deactivated or deleted.
func PermissionManifest() []string {
	return []string{
		PermissionInstitutionCreate,
		PermissionInstitutionRead,
		PermissionInstitutionUpdate,
		PermissionInstitutionDelete,
		PermissionRegistrationCreate,
		PermissionRegistrationRead,
		PermissionRegistrationUpdate,
		PermissionRegistrationDelete,
		PermissionRegistrationSubmit,
		PermissionRegistrationApprove,
		PermissionRegistrationReject,
		PermissionDocumentCreate,
		PermissionDocumentRead,
		PermissionDocumentUpdate,
		PermissionDocumentDelete,
		PermissionUserCreate,
		PermissionUserRead,
		PermissionUserUpdate,
		PermissionUserDelete,
		PermissionRoleCreate,
		PermissionRoleRead,
		PermissionRoleUpdate,
		PermissionRoleDelete,
		PermissionPermissionRead,
		PermissionPermissionUpdate,
		PermissionLocalizationRead,
		PermissionLocalizationUpdate,
	}
}

// Default role system names bootstrapped by the role template synchronizer.
const (
	RoleAdministrator = "Administrator"
	RoleMaker         = "Maker"
	RoleChecker       = "Checker"
	RoleRegulator     = "Regulator"
	RoleInspector     = "Inspector"
)

// RoleTemplate declares a default role and the permission set it is
// pre-wired to.
type RoleTemplate struct {
	RoleSystemName        string
	PermissionSystemNames []string
}

// DefaultRoleTemplates returns the role templates applied at bootstrap. The
// slice is rebuilt on every call so callers may mutate their copy.
func DefaultRoleTemplates() []RoleTemplate {
	return []RoleTemplate{
		{
			RoleSystemName:        RoleAdministrator,
			PermissionSystemNames: PermissionManifest(),
		},
		{
			RoleSystemName: RoleMaker,
			PermissionSystemNames: []string{
				PermissionInstitutionRead,
				PermissionRegistrationCreate,
				PermissionRegistrationRead,
				PermissionRegistrationUpdate,
				PermissionRegistrationSubmit,
				PermissionDocumentCreate,
				PermissionDocumentRead,
				PermissionDocumentUpdate,
			},
		},
		{
			RoleSystemName: RoleChecker,
			PermissionSystemNames: []string{
				PermissionInstitutionRead,
				PermissionRegistrationRead,
				PermissionRegistrationApprove,
				PermissionRegistrationReject,
				PermissionDocumentRead,
			},
		},
		{
			RoleSystemName: RoleRegulator,
			PermissionSystemNames: []string{
				PermissionInstitutionRead,
				PermissionInstitutionUpdate,
				PermissionRegistrationRead,
				PermissionRegistrationApprove,
				PermissionRegistrationReject,
				PermissionDocumentRead,
			},
		},
		{
			RoleSystemName: RoleInspector,
			PermissionSystemNames: []string{
				PermissionInstitutionRead,
				PermissionRegistrationRead,
				PermissionDocumentRead,
			},
		},
	}
}
