package rbac

import "strings"

const (
	PermGradesViewOwn = "grades:view-own"
	PermSimulate      = "grades:simulate"
	PermReportExport  = "report:export"
	PermStudentsView  = "students:view"
	PermSheetsAudit   = "sheets:audit"
)

// Portal roles stored on the session and carried in the JWT.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// Policy maps a portal role to its grants. A grant is an exact permission,
// a "prefix:*" wildcard or "*".
type Policy map[string][]string

// DefaultPolicy: SUAP students see and simulate their own grades, servers
// may also look students up, and the local admin may audit snapshots.
var DefaultPolicy = Policy{
	RoleStudent: {PermGradesViewOwn, PermSimulate, PermReportExport},
	RoleStaff:   {"grades:*", PermReportExport, PermStudentsView},
	RoleAdmin:   {"*"},
}

// Allows reports whether role holds perm. Unknown roles hold nothing.
func (p Policy) Allows(role, perm string) bool {
	for _, g := range p[role] {
		if g == "*" || g == perm {
			return true
		}
		if prefix, ok := strings.CutSuffix(g, "*"); ok && strings.HasPrefix(perm, prefix) {
			return true
		}
	}
	return false
}

// RoleForUserType maps SUAP's tipo_usuario to a portal role.
func RoleForUserType(t string) string {
	switch t {
	case "Servidor", "Servidor (Docente)", "Servidor (Técnico-Administrativo)", "Prestador de Serviço":
		return RoleStaff
	default:
		return RoleStudent
	}
}
