package models

//nolint:gosec // header and context key names, not credentials
const (
	MwSchemeAPIKeyAuth = "ApiKeyAuth"
	MwSchemeBearerAuth = "BearerAuth"

	MwAPIKeyHeader = "X-API-Key"

	MwPrincipalKey = "principal"
	MwAuthErrorKey = "auth_error"
	MwTenantIDKey  = "tenant_id"
	MwTokenKey     = "token"
)
