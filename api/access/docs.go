// Package access holds the Swagger document served at /swagger/.
package access

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "VistorIA Pro",
            "url": "https://vistoriapro.com.br"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "description": "Always 200 while the process is up.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/accesssdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Checks the database and whether identity provider keys are loaded.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/accesssdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/accesssdk.HealthResponse"}}
                }
            }
        },
        "/v1/me/entitlements": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Role, effective credits and whether a credit-consuming action may start now.",
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Current entitlements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.EntitlementResponse"}},
                    "401": {"description": "Missing or invalid session", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/credits/consume": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Takes one credit for a credit-consuming action. Accounts on the unlimited allowlist pass without a deduction.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Consume a credit",
                "parameters": [
                    {"description": "Action being paid for", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accesssdk.ConsumeCreditRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.ConsumeCreditResponse"}},
                    "400": {"description": "Unknown action", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "402": {"description": "insufficient_credits", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/disputes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Owner view of the caller's dispute. Staff receive the full record. Disputes of other accounts answer 404.",
                "produces": ["application/json"],
                "tags": ["Disputes"],
                "summary": "Get a dispute",
                "parameters": [
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.Dispute"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/disputes/{id}/share": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Issues a dispute_review access link and records the landlord's grant. The token is returned once.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Disputes"],
                "summary": "Share a dispute with a landlord",
                "parameters": [
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true},
                    {"description": "Landlord to share with", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accesssdk.ShareDisputeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/accesssdk.ShareDisputeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/disputes/{id}/grants/{email}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Expires the landlord's grant, which stops every link issued to them for this dispute.",
                "tags": ["Disputes"],
                "summary": "Revoke a landlord's access",
                "parameters": [
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Landlord email", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Accounts newest first with their effective credits.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "integer", "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.ListAccountsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/accounts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "One account's role and effective credits.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Get an account",
                "parameters": [
                    {"type": "string", "description": "Account id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.EntitlementResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/disputes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "The complete dispute record including internal notes and grants.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Get a dispute (staff)",
                "parameters": [
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.Dispute"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/admin/overrides": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Number of allowlisted emails and, with ?email=, whether that email is on the list. Members are never listed.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Inspect the unlimited allowlist",
                "parameters": [
                    {"type": "string", "description": "Email to test", "name": "email", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.OverridesResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ErrorResponse"}}
                }
            }
        },
        "/v1/landlord/{token}/disputes/{id}": {
            "get": {
                "description": "The dispute as a landlord may see it. Errors carry a localized message (Accept-Language: pt-BR or en).",
                "produces": ["application/json"],
                "tags": ["Landlord"],
                "summary": "Shared dispute",
                "parameters": [
                    {"type": "string", "description": "Access link token", "name": "token", "in": "path", "required": true},
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.Dispute"}},
                    "401": {"description": "link_invalid", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}},
                    "403": {"description": "access_denied", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}},
                    "404": {"description": "not_found", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}}
                }
            }
        },
        "/v1/landlord/{token}/disputes/{id}/messages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Landlord"],
                "summary": "Shared dispute messages",
                "parameters": [
                    {"type": "string", "description": "Access link token", "name": "token", "in": "path", "required": true},
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.MessagesResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}}
                }
            }
        },
        "/v1/landlord/{token}/disputes/{id}/evidence": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Landlord"],
                "summary": "Shared dispute evidence",
                "parameters": [
                    {"type": "string", "description": "Access link token", "name": "token", "in": "path", "required": true},
                    {"type": "string", "description": "Dispute id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accesssdk.EvidenceResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/accesssdk.ExternalErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "accesssdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "forbidden"},
                "error_description": {"type": "string", "example": "insufficient role"}
            }
        },
        "accesssdk.ExternalErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "link_invalid"},
                "message": {"type": "string", "example": "Este link expirou ou é inválido."}
            }
        },
        "accesssdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "identity_provider": {"type": "string"}
            }
        },
        "accesssdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/accesssdk.HealthChecks"}
            }
        },
        "accesssdk.EntitlementResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "admin", "super_admin"]},
                "credits": {"description": "integer balance or the string \"unlimited\""},
                "has_capacity": {"type": "boolean"},
                "unlimited": {"type": "boolean"}
            }
        },
        "accesssdk.ConsumeCreditRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["ai_analysis", "report_generation"]}
            }
        },
        "accesssdk.ConsumeCreditResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "deducted": {"type": "boolean"},
                "credits": {"description": "integer balance or the string \"unlimited\""}
            }
        },
        "accesssdk.ListAccountsResponse": {
            "type": "object",
            "properties": {
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.EntitlementResponse"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "accesssdk.OverridesResponse": {
            "type": "object",
            "properties": {
                "size": {"type": "integer"},
                "email": {"type": "string"},
                "match": {"type": "boolean"}
            }
        },
        "accesssdk.ShareDisputeRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "ttl_seconds": {"type": "integer"}
            }
        },
        "accesssdk.ShareDisputeResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "grant_id": {"type": "string"}
            }
        },
        "accesssdk.Dispute": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "inspection_id": {"type": "string"},
                "owner_account_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["open", "under_review", "resolved", "rejected"]},
                "internal_notes": {"type": "string"},
                "resolved_by": {"type": "string"},
                "resolved_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.DisputeItem"}},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.Message"}},
                "evidence": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.Evidence"}},
                "grants": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.Grant"}}
            }
        },
        "accesssdk.DisputeItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dispute_id": {"type": "string"},
                "room": {"type": "string"},
                "item": {"type": "string"},
                "reason": {"type": "string"},
                "internal_only": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "accesssdk.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dispute_id": {"type": "string"},
                "author_kind": {"type": "string", "enum": ["tenant", "landlord", "staff"]},
                "author_account_id": {"type": "string"},
                "author_name": {"type": "string"},
                "body": {"type": "string"},
                "internal_only": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "accesssdk.Evidence": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dispute_id": {"type": "string"},
                "uploader_account_id": {"type": "string"},
                "file_url": {"type": "string"},
                "description": {"type": "string"},
                "internal_only": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "accesssdk.Grant": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "resource_id": {"type": "string"},
                "subject_email": {"type": "string"},
                "created_by": {"type": "string"},
                "expires_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "accesssdk.MessagesResponse": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.Message"}}
            }
        },
        "accesssdk.EvidenceResponse": {
            "type": "object",
            "properties": {
                "evidence": {"type": "array", "items": {"$ref": "#/definitions/accesssdk.Evidence"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session JWT or access link token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "VistorIA Pro Access API",
	Description:      "Entitlements, credit consumption and landlord access links for VistorIA Pro.\n\nInternal endpoints take the identity provider session token as a bearer credential.\nLandlord endpoints take an access link token, in the path or as a bearer credential.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
