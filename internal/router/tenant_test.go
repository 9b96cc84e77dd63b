package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTenantFromPath(t *testing.T) {
	tenant, rest := ExtractTenantFromPath("/~acme/contacts")
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, "/contacts", rest)

	tenant, rest = ExtractTenantFromPath("/~acme")
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, "/", rest, "a bare /~slug normalises to /")

	tenant, rest = ExtractTenantFromPath("/contacts")
	assert.Equal(t, "", tenant)
	assert.Equal(t, "/contacts", rest)

	tenant, rest = ExtractTenantFromPath("/~acme/contacts/contact_1")
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, "/contacts/contact_1", rest)
}

func TestExtractTenantFromHost(t *testing.T) {
	assert.Equal(t, "acme", ExtractTenantFromHost("acme.example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("deep.acme.example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("unrelated.io", "example.com"))

	// system subdomains never become tenants, case-insensitively
	assert.Equal(t, "", ExtractTenantFromHost("api.example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("WWW.example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("dashboard.example.com", "example.com"))
	assert.Equal(t, "", ExtractTenantFromHost("crm.example.com", "example.com"))
}

func TestResolveTenantPrecedence(t *testing.T) {
	// path prefix wins over subdomain
	tenant, rest := ResolveTenant("/~acme/contacts", "globex.example.com", "example.com")
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, "/contacts", rest)

	tenant, rest = ResolveTenant("/contacts", "globex.example.com", "example.com")
	assert.Equal(t, "globex", tenant)
	assert.Equal(t, "/contacts", rest)

	tenant, _ = ResolveTenant("/contacts", "api.example.com", "example.com")
	assert.Equal(t, "", tenant)
}

func TestPrefixTableResolveCollection(t *testing.T) {
	table := PrefixTable{"contact": "contacts", "company": "companies"}

	plural, ok := table.ResolveCollection("contact_abc")
	assert.True(t, ok)
	assert.Equal(t, "contacts", plural)

	// split on the FIRST underscore: an opaque body with underscores
	// still resolves
	plural, ok = table.ResolveCollection("contact_john_doe")
	assert.True(t, ok)
	assert.Equal(t, "contacts", plural)

	_, ok = table.ResolveCollection("bogus_xyz")
	assert.False(t, ok)

	_, ok = table.ResolveCollection("nounderscore")
	assert.False(t, ok)

	_, ok = table.ResolveCollection("Contact_abc")
	assert.False(t, ok, "prefix must be lowercase")
}
