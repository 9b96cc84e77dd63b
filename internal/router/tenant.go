// Package router mounts the canonical REST surface for every model
// (spec §4.6): tenant extraction, query-param conventions, global
// id-prefix dispatch, verb execution, and envelope assembly.
package router

import "strings"

// systemSubdomains is the allowlist checked before treating a subdomain
// as a tenant slug (spec §4.6).
var systemSubdomains = map[string]bool{
	"api": true, "www": true, "platform": true, "dashboard": true,
	"docs": true, "agents": true, "db": true, "ch": true, "code": true,
	"crm": true, "build": true, "launch": true, "grow": true, "scale": true,
}

// ExtractTenantFromPath splits a leading "/~{slug}" path segment off.
// "/~acme/contacts" -> ("acme", "/contacts"); a bare "/~acme" normalises
// to "/".
func ExtractTenantFromPath(path string) (tenant string, rest string) {
	if !strings.HasPrefix(path, "/~") {
		return "", path
	}
	trimmed := path[2:]
	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return trimmed, "/"
	}
	return trimmed[:idx], trimmed[idx:]
}

// ExtractTenantFromHost resolves a tenant from "{slug}.{baseDomain}",
// returning "" if host isn't a subdomain of baseDomain or the
// subdomain is in the system allowlist.
func ExtractTenantFromHost(host, baseDomain string) string {
	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return ""
	}
	if systemSubdomains[strings.ToLower(slug)] {
		return ""
	}
	return slug
}

// ResolveTenant applies spec §4.6's precedence: path prefix first, then
// subdomain, else the root (no-tenant) scope.
func ResolveTenant(path, host, baseDomain string) (tenant string, rest string) {
	if tenant, rest = ExtractTenantFromPath(path); tenant != "" {
		return tenant, rest
	}
	if baseDomain != "" {
		if tenant := ExtractTenantFromHost(host, baseDomain); tenant != "" {
			return tenant, path
		}
	}
	return "", path
}
