package sessions

import (
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/openapi"
)

type spec struct {
	Open    *openapi.Operation
	Get     *openapi.Operation
	Apply   *openapi.Operation
	Revert  *openapi.Operation
	Preview *openapi.Operation
	Save    *openapi.Operation
	Close   *openapi.Operation
}

func params(names ...string) []*openapi.Parameter {
	out := []*openapi.Parameter{openapi.HeaderParam(identity.Header, "Owner identity")}
	for _, n := range names {
		out = append(out, openapi.PathParam(n, n))
	}
	return out
}

var Spec = spec{
	Open: &openapi.Operation{
		Summary:     "Open edit session",
		Description: "Load every page of a document for editing",
		Parameters:  params(),
		RequestBody: openapi.RequestBodyJSON("OpenSessionRequest", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Session opened", "Session"),
			404: openapi.ResponseRef("NotFound"),
			503: {Description: "Too many open sessions"},
		},
	},
	Get: &openapi.Operation{
		Summary:    "Get session",
		Parameters: params("id"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session state", "Session"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Apply: &openapi.Operation{
		Summary:     "Apply operation",
		Description: "Apply crop, rotate, flip, filter, watermark, or overlay to a page",
		Parameters:  params("id", "pageId"),
		RequestBody: openapi.RequestBodyJSON("Operation", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page state", "SessionPage"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Revert: &openapi.Operation{
		Summary:    "Revert page edits",
		Parameters: params("id", "pageId"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page state", "SessionPage"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Preview: &openapi.Operation{
		Summary:    "Preview page",
		Parameters: params("id", "pageId"),
		Responses: map[int]*openapi.Response{
			200: openapi.BinaryResponse("Edited page at preview resolution", "image/jpeg"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Save: &openapi.Operation{
		Summary:     "Save session",
		Description: "Upload changed pages, then write the page batch and the document timestamp",
		Parameters:  params("id"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Save outcome", "SaveResult"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			502: {Description: "Blob or record store failure; edits remain pending"},
		},
	},
	Close: &openapi.Operation{
		Summary:    "Discard session",
		Parameters: params("id"),
		Responses: map[int]*openapi.Response{
			204: {Description: "Session discarded"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"OpenSessionRequest": {
			Type:       "object",
			Required:   []string{"document_id"},
			Properties: map[string]*openapi.Schema{"document_id": {Type: "string", Format: "uuid"}},
		},
		"SessionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page_id":     {Type: "string", Format: "uuid"},
				"page_number": {Type: "integer"},
				"state":       {Type: "string", Enum: []string{"clean", "dirty", "uploading"}},
				"operations":  {Type: "integer"},
				"readable":    {Type: "boolean"},
				"width":       {Type: "integer"},
				"height":      {Type: "integer"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"document_id":   {Type: "string", Format: "uuid"},
				"document_name": {Type: "string"},
				"updated_at":    {Type: "string", Format: "date-time"},
				"saving":        {Type: "boolean"},
				"pages":         {Type: "array", Items: openapi.SchemaRef("SessionPage")},
			},
		},
		"SaveResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"saved":   {Type: "integer"},
				"skipped": {Type: "integer", Description: "Edited pages whose bytes matched the original"},
				"session": openapi.SchemaRef("Session"),
			},
		},
		"Operation": {
			Type:     "object",
			Required: []string{"kind"},
			Properties: map[string]*openapi.Schema{
				"kind":      {Type: "string", Enum: []string{"crop", "rotate", "flip", "filter", "watermark", "overlay"}},
				"crop":      {Type: "object", Description: "Unit rect {x, y, w, h}"},
				"degrees":   {Type: "number", Description: "Clockwise rotation"},
				"axis":      {Type: "string", Enum: []string{"horizontal", "vertical"}},
				"filter":    {Type: "string", Enum: []string{"mono", "instant", "cool", "warm", "sepia", "dramatic", "noir"}},
				"intensity": {Type: "number", Description: "0 to 1, default 1"},
				"watermark": {Type: "object"},
				"overlay":   {Type: "object", Description: "Stroke overlay"},
			},
		},
	}
}
