package publishing

import "github.com/guarayo/cuentos/pkg/openapi"

func counterOp(summary string, secured bool) *openapi.Operation {
	op := &openapi.Operation{
		Summary:    summary,
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Story UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated story", "Story"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			503: openapi.ResponseRef("Unavailable"),
		},
	}
	if secured {
		op.Security = openapi.Bearer
		op.Responses[401] = openapi.ResponseRef("Unauthorized")
	}
	return op
}

var docs = struct {
	Create *openapi.Operation
	Edit   *openapi.Operation
	Delete *openapi.Operation
	Like   *openapi.Operation
	Unlike *openapi.Operation
	View   *openapi.Operation
}{
	Create: &openapi.Operation{
		Summary:     "Publish a story",
		Description: "Attachments are uploaded before the story is stored. A failed upload stores nothing.",
		Security:    openapi.Bearer,
		RequestBody: openapi.RequestBodyMultipart("StoryForm", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created story", "Story"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			409: openapi.ResponseRef("Conflict"),
			413: openapi.ResponseRef("TooLarge"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	Edit: &openapi.Operation{
		Summary:     "Edit a story",
		Description: "Only fields present in the form change. Attachments without a new file keep their URL.",
		Security:    openapi.Bearer,
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Story UUID")},
		RequestBody: openapi.RequestBodyMultipart("StoryForm", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated story", "Story"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a story",
		Security:   openapi.Bearer,
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Story UUID")},
		Responses: map[int]*openapi.Response{
			204: openapi.ResponseEmpty("Deleted"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Like:   counterOp("Like a story", true),
	Unlike: counterOp("Remove a like", true),
	View:   counterOp("Count a view", false),
}

// Schemas returns the OpenAPI component schemas for publishing.
func Schemas() map[string]*openapi.Schema {
	binary := func(desc string) *openapi.Schema {
		return &openapi.Schema{Type: "string", Format: "binary", Description: desc}
	}

	return map[string]*openapi.Schema{
		"StoryForm": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"title":    {Type: "string"},
				"body":     {Type: "string"},
				"author":   {Type: "string"},
				"category": openapi.SchemaRef("Category"),
				"image":    binary("Image attachment"),
				"audio":    binary("Audio attachment"),
				"video":    binary("Video attachment"),
			},
		},
	}
}
