package compose

import (
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/openapi"
)

type spec struct {
	PlanMerge *openapi.Operation
	Merge     *openapi.Operation
	Extract   *openapi.Operation
	Export    *openapi.Operation
}

var owner = openapi.HeaderParam(identity.Header, "Owner identity")

var Spec = spec{
	PlanMerge: &openapi.Operation{
		Summary:     "Preview merge",
		Description: "List the pages of the selected documents in default merge order",
		Parameters:  []*openapi.Parameter{owner},
		RequestBody: openapi.RequestBodyJSON("MergePlanRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Merge plan", "MergePlan"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Merge: &openapi.Operation{
		Summary:     "Merge documents",
		Description: "Create a new document from pages of two or more documents",
		Parameters:  []*openapi.Parameter{owner},
		RequestBody: openapi.RequestBodyJSON("MergeCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Merged document", "DocumentDetail"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: {Description: "No selected page could be decoded"},
		},
	},
	Extract: &openapi.Operation{
		Summary:     "Extract pages",
		Description: "Copy selected pages, in page order, into a new document",
		Parameters:  []*openapi.Parameter{owner},
		RequestBody: openapi.RequestBodyJSON("ExtractCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Extracted document", "DocumentDetail"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: {Description: "No selected page could be decoded"},
		},
	},
	Export: &openapi.Operation{
		Summary:     "Export document",
		Description: "Render a document as one PDF or one image per page; several images are zipped",
		Parameters: []*openapi.Parameter{
			owner,
			openapi.PathParam("id", "Document ID"),
			openapi.QueryParam("format", "string", "pdf, jpeg, or png (default pdf)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.BinaryResponse("Exported file", "application/pdf", "image/jpeg", "image/png", "application/zip"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: {Description: "No page could be decoded"},
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	uuidArray := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}}

	return map[string]*openapi.Schema{
		"MergePlanRequest": {
			Type:       "object",
			Required:   []string{"document_ids"},
			Properties: map[string]*openapi.Schema{"document_ids": uuidArray},
		},
		"PageRef": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_id": {Type: "string", Format: "uuid"},
				"page_id":     {Type: "string", Format: "uuid"},
			},
		},
		"MergePlanItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_id":        {Type: "string", Format: "uuid"},
				"page_id":            {Type: "string", Format: "uuid"},
				"document_name":      {Type: "string"},
				"source_page_number": {Type: "integer"},
			},
		},
		"MergePlan": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_ids": uuidArray,
				"items":        {Type: "array", Items: openapi.SchemaRef("MergePlanItem")},
			},
		},
		"MergeCommand": {
			Type:     "object",
			Required: []string{"document_ids"},
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"folder_id":    {Type: "string", Format: "uuid"},
				"document_ids": uuidArray,
				"pages": {
					Type:        "array",
					Items:       openapi.SchemaRef("PageRef"),
					Description: "Final page arrangement; omit to keep the default order",
				},
			},
		},
		"ExtractCommand": {
			Type:     "object",
			Required: []string{"document_id", "page_ids"},
			Properties: map[string]*openapi.Schema{
				"document_id": {Type: "string", Format: "uuid"},
				"page_ids":    uuidArray,
				"name":        {Type: "string"},
				"folder_id":   {Type: "string", Format: "uuid"},
			},
		},
	}
}
