package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cursova API",
        "description": "Course registration, onboarding and content API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Registrations", "description": "Course registration moderation"},
        {"name": "Users", "description": "User provisioning and lifecycle"},
        {"name": "Onboarding", "description": "Email verification and password setup"},
        {"name": "Invitations", "description": "Invitation tokens"},
        {"name": "Courses", "description": "Course catalog"},
        {"name": "Blog", "description": "Public blog"},
        {"name": "Subscribers", "description": "Newsletter and push devices"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with credentials or a one-time custom token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Get the authenticated user's profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Submit a course registration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Payload is not a JSON object"}
                }
            },
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export registrations as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/registrations/{id}": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Get registration detail with status history",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Registrations"],
                "summary": "Delete a registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Registrations"],
                "summary": "Transition registration status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Create a user and send an onboarding invitation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "207": {"description": "User created, invitation failed"},
                    "409": {"description": "Email already registered"}
                }
            },
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{uid}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/users/{uid}/resend-invitation": {
            "post": {
                "tags": ["Users"],
                "summary": "Resend the onboarding invitation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "User is not invitable"}
                }
            }
        },
        "/users/{uid}/suspend": {
            "post": {
                "tags": ["Users"],
                "summary": "Suspend a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Suspended"}
                }
            }
        },
        "/users/{uid}/reactivate": {
            "post": {
                "tags": ["Users"],
                "summary": "Reactivate a suspended user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Reactivated"}
                }
            }
        },
        "/users/verify-email": {
            "post": {
                "tags": ["Onboarding"],
                "summary": "Verify the invited email address",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid code"},
                    "410": {"description": "Code expired"}
                }
            }
        },
        "/users/set-password": {
            "post": {
                "tags": ["Onboarding"],
                "summary": "Set the password and complete onboarding",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid code or weak password"},
                    "410": {"description": "Code expired"}
                }
            }
        },
        "/invitations/verify": {
            "get": {
                "tags": ["Invitations"],
                "summary": "Check an invitation token without consuming it",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid token"},
                    "404": {"description": "No live invitation"},
                    "410": {"description": "Expired"}
                }
            }
        },
        "/invitations/accept": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Accept an invitation token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptInvitationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Accepted"},
                    "400": {"description": "Invalid token"},
                    "404": {"description": "No live invitation"},
                    "410": {"description": "Expired"}
                }
            }
        },
        "/invitations": {
            "get": {
                "tags": ["Invitations"],
                "summary": "List invitations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "email", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List active courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/blog": {
            "get": {
                "tags": ["Blog"],
                "summary": "List published blog posts",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "featured", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Blog"],
                "summary": "Publish a blog post",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BlogPostInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/blog/{slug}": {
            "get": {
                "tags": ["Blog"],
                "summary": "Get a published post by slug",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/blog/categories": {
            "get": {
                "tags": ["Blog"],
                "summary": "List blog categories",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/subscribers": {
            "post": {
                "tags": ["Subscribers"],
                "summary": "Subscribe to the newsletter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubscribeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/notifications/tokens": {
            "post": {
                "tags": ["Subscribers"],
                "summary": "Register a push device token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterDeviceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "grant": {"type": "string", "enum": ["password", "custom_token"]},
                "customToken": {"type": "string"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "customMessage": {"type": "string"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "required": ["email", "displayName", "role"],
            "properties": {
                "email": {"type": "string"},
                "displayName": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "COORDINATOR", "PROFESSOR", "STUDENT"]},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "department": {"type": "string"},
                "sendInvitation": {"type": "boolean", "default": true}
            }
        },
        "VerifyEmailRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string"}
            }
        },
        "SetPasswordRequest": {
            "type": "object",
            "required": ["code", "password"],
            "properties": {
                "code": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AcceptInvitationRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CourseInput": {
            "type": "object",
            "required": ["slug", "title"],
            "properties": {
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "active": {"type": "boolean"},
                "featured": {"type": "boolean"},
                "startsAt": {"type": "string", "format": "date-time"},
                "durationWeeks": {"type": "integer"}
            }
        },
        "BlogPostInput": {
            "type": "object",
            "required": ["slug", "title", "body"],
            "properties": {
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "body": {"type": "string"},
                "categoryId": {"type": "string"},
                "featured": {"type": "boolean"},
                "published": {"type": "boolean"}
            }
        },
        "SubscribeRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "RegisterDeviceRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"},
                "platform": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
