package auth

import "github.com/guarayo/cuentos/pkg/openapi"

var docs = struct {
	SignUp  *openapi.Operation
	Confirm *openapi.Operation
	SignIn  *openapi.Operation
	SignOut *openapi.Operation
	Session *openapi.Operation
}{
	SignUp: &openapi.Operation{
		Summary:     "Create an account",
		Description: "Returns a token right away unless email confirmation is required.",
		RequestBody: openapi.RequestBodyJSON("Credentials", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Account created", "SignUpResult"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Confirm: &openapi.Operation{
		Summary:     "Confirm an account email",
		RequestBody: openapi.RequestBodyJSON("ConfirmRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Confirmed account", "User"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	SignIn: &openapi.Operation{
		Summary:     "Sign in with email and password",
		RequestBody: openapi.RequestBodyJSON("Credentials", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session token", "Token"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
		},
	},
	SignOut: &openapi.Operation{
		Summary:  "Sign out",
		Security: openapi.Bearer,
		Responses: map[int]*openapi.Response{
			204: openapi.ResponseEmpty("Signed out"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Session: &openapi.Operation{
		Summary: "Current session",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session", "Session"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
}

// Schemas returns the OpenAPI component schemas for auth.
func Schemas() map[string]*openapi.Schema {
	identity := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":    {Type: "string"},
			"email": {Type: "string", Format: "email"},
		},
	}

	return map[string]*openapi.Schema{
		"Credentials": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"email":    {Type: "string", Format: "email"},
				"password": {Type: "string", Format: "password"},
			},
			Required: []string{"email", "password"},
		},
		"ConfirmRequest": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"token": {Type: "string"}},
			Required:   []string{"token"},
		},
		"User": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"email":        {Type: "string", Format: "email"},
				"confirmed_at": {Type: "string", Format: "date-time"},
				"created_at":   {Type: "string", Format: "date-time"},
			},
		},
		"Token": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"access_token": {Type: "string"},
				"token_type":   {Type: "string"},
				"expires_at":   {Type: "string", Format: "date-time"},
				"identity":     identity,
			},
		},
		"SignUpResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user":                  openapi.SchemaRef("User"),
				"token":                 openapi.SchemaRef("Token"),
				"confirmation_required": {Type: "boolean"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":    {Type: "string", Enum: []any{"unknown", "anonymous", "authenticated"}},
				"identity": identity,
			},
		},
	}
}
