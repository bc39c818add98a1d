package tags

import (
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/openapi"
)

type spec struct {
	List         *openapi.Operation
	Create       *openapi.Operation
	Delete       *openapi.Operation
	DocumentTags *openapi.Operation
	Attach       *openapi.Operation
	Detach       *openapi.Operation
}

var ownerParam = openapi.HeaderParam(identity.Header, "Owner identity")

var tagList = &openapi.Response{
	Description: "Tags",
	Content: map[string]*openapi.MediaType{
		"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Tag")}},
	},
}

var Spec = spec{
	List: &openapi.Operation{
		Summary:    "List tags",
		Parameters: []*openapi.Parameter{ownerParam},
		Responses:  map[int]*openapi.Response{200: tagList},
	},
	Create: &openapi.Operation{
		Summary:     "Create tag",
		Parameters:  []*openapi.Parameter{ownerParam},
		RequestBody: openapi.RequestBodyJSON("TagCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Tag created", "Tag"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete tag",
		Description: "Delete the tag and detach it from every document",
		Parameters:  []*openapi.Parameter{ownerParam, openapi.PathParam("id", "Tag ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Tag deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	DocumentTags: &openapi.Operation{
		Summary:    "List document tags",
		Parameters: []*openapi.Parameter{ownerParam, openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			200: tagList,
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Attach: &openapi.Operation{
		Summary: "Attach tag",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
			openapi.PathParam("tagId", "Tag ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Tag attached"},
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Detach: &openapi.Operation{
		Summary: "Detach tag",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
			openapi.PathParam("tagId", "Tag ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Tag detached"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Tag": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"owner_id":   {Type: "string", Format: "uuid"},
				"name":       {Type: "string"},
				"color":      {Type: "string", Description: "#RRGGBB"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"TagCommand": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*openapi.Schema{
				"name":  {Type: "string"},
				"color": {Type: "string", Description: "#RRGGBB"},
			},
		},
	}
}
