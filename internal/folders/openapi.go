package folders

import (
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/openapi"
)

type spec struct {
	List   *openapi.Operation
	Create *openapi.Operation
	Find   *openapi.Operation
	Update *openapi.Operation
	Delete *openapi.Operation
}

var ownerParam = openapi.HeaderParam(identity.Header, "Owner identity")

var Spec = spec{
	List: &openapi.Operation{
		Summary:    "List folders",
		Parameters: []*openapi.Parameter{ownerParam},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Every folder of the owner, by name",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Folder")}},
				},
			},
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create folder",
		Parameters:  []*openapi.Parameter{ownerParam},
		RequestBody: openapi.RequestBodyJSON("FolderCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Folder created", "Folder"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Get folder",
		Parameters: []*openapi.Parameter{ownerParam, openapi.PathParam("id", "Folder ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Folder", "Folder"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Rename or move folder",
		Parameters:  []*openapi.Parameter{ownerParam, openapi.PathParam("id", "Folder ID")},
		RequestBody: openapi.RequestBodyJSON("FolderCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Folder updated", "Folder"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete folder",
		Description: "Delete the folder and its subfolders; contained documents move to the root",
		Parameters:  []*openapi.Parameter{ownerParam, openapi.PathParam("id", "Folder ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Folder deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Folder": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"owner_id":   {Type: "string", Format: "uuid"},
				"parent_id":  {Type: "string", Format: "uuid"},
				"name":       {Type: "string"},
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"FolderCommand": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*openapi.Schema{
				"name":      {Type: "string"},
				"parent_id": {Type: "string", Format: "uuid"},
			},
		},
	}
}
