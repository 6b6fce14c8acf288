package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy
	assert.True(t, p.Allows(RoleStudent, PermGradesViewOwn))
	assert.False(t, p.Allows(RoleStudent, PermStudentsView))
	assert.False(t, p.Allows(RoleStudent, PermSheetsAudit))
	assert.True(t, p.Allows(RoleStaff, PermSimulate)) // via grades:*
	assert.True(t, p.Allows(RoleStaff, PermStudentsView))
	assert.False(t, p.Allows(RoleStaff, PermSheetsAudit))
	assert.True(t, p.Allows(RoleAdmin, PermSheetsAudit))
	assert.False(t, p.Allows("ghost", PermSimulate))
	assert.False(t, p.Allows("", PermSimulate))
}

func TestPolicy_Wildcards(t *testing.T) {
	p := Policy{"reader": {"report:*"}}
	assert.True(t, p.Allows("reader", PermReportExport))
	assert.False(t, p.Allows("reader", PermGradesViewOwn))
}

func TestRequire(t *testing.T) {
	h := Require(PermStudentsView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for role, want := range map[string]int{
		"":          http.StatusForbidden,
		RoleStudent: http.StatusForbidden,
		RoleStaff:   http.StatusOK,
		RoleAdmin:   http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestPolicy_RequireCustom(t *testing.T) {
	p := Policy{RoleStudent: {PermSheetsAudit}}
	h := p.Require(PermSheetsAudit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), RoleStudent)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleForUserType(t *testing.T) {
	assert.Equal(t, RoleStudent, RoleForUserType("Aluno"))
	assert.Equal(t, RoleStaff, RoleForUserType("Servidor (Docente)"))
	assert.Equal(t, RoleStaff, RoleForUserType("Prestador de Serviço"))
}
