package documents

import "github.com/JaimeStill/docpages/pkg/openapi"

type spec struct {
	List          *openapi.Operation
	Find          *openapi.Operation
	Update        *openapi.Operation
	Delete        *openapi.Operation
	Pages         *openapi.Operation
	PageImage     *openapi.Operation
	PageThumbnail *openapi.Operation
}

var ownerParam = openapi.HeaderParam("X-Owner-ID", "Owner identity forwarded by the gateway")

var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List documents",
		Description: "List the owner's documents with pagination and optional filters",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Items per page", false),
			openapi.QueryParam("search", "string", "Search in name", false),
			openapi.QueryParam("name", "string", "Filter by name (contains)", false),
			openapi.QueryParam("folder_id", "string", "Filter by folder", false),
			openapi.QueryParam("favorite", "boolean", "Filter by favorite flag", false),
			openapi.QueryParam("tag_id", "string", "Filter by attached tag", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Documents list", "DocumentPageResult"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find document",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document details", "Document"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update document",
		Description: "Rename, toggle favorite, or move the document to a folder",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
		},
		RequestBody: openapi.RequestBodyJSON("UpdateDocumentCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document updated", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete document",
		Description: "Delete the document and its pages; stored bytes are removed asynchronously",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Document deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Pages: &openapi.Operation{
		Summary: "List pages",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document with pages in page order", "DocumentDetail"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	PageImage: &openapi.Operation{
		Summary: "Page image",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
			openapi.PathParam("pageId", "Page ID"),
			openapi.QueryParam("fresh", "boolean", "Bypass the read cache", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.BinaryResponse("Page image", "image/jpeg"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	PageThumbnail: &openapi.Operation{
		Summary: "Page thumbnail",
		Parameters: []*openapi.Parameter{
			ownerParam,
			openapi.PathParam("id", "Document ID"),
			openapi.PathParam("pageId", "Page ID"),
			openapi.QueryParam("fresh", "boolean", "Bypass the read cache", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.BinaryResponse("Page thumbnail", "image/jpeg"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"owner_id":   {Type: "string", Format: "uuid"},
				"name":       {Type: "string"},
				"folder_id":  {Type: "string", Format: "uuid"},
				"favorite":   {Type: "boolean"},
				"page_count": {Type: "integer"},
				"size_bytes": {Type: "integer", Format: "int64", Description: "Sum of page sizes at last save"},
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"Page": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"document_id":   {Type: "string", Format: "uuid"},
				"page_number":   {Type: "integer", Description: "1-based position"},
				"image_key":     {Type: "string", Description: "Image locator; changes whenever bytes change"},
				"thumbnail_key": {Type: "string"},
				"size_bytes":    {Type: "integer", Format: "int64"},
				"width":         {Type: "integer"},
				"height":        {Type: "integer"},
				"created_at":    {Type: "string", Format: "date-time"},
			},
		},
		"DocumentDetail": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document": openapi.SchemaRef("Document"),
				"pages":    {Type: "array", Items: openapi.SchemaRef("Page")},
			},
		},
		"UpdateDocumentCommand": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*openapi.Schema{
				"name":      {Type: "string"},
				"favorite":  {Type: "boolean"},
				"folder_id": {Type: "string", Format: "uuid", Description: "Omit to remove from its folder"},
			},
		},
		"DocumentPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":         {Type: "array", Items: openapi.SchemaRef("Document")},
				"total":        {Type: "integer"},
				"page":         {Type: "integer"},
				"page_size":    {Type: "integer"},
				"total_pages":  {Type: "integer"},
				"has_next":     {Type: "boolean"},
				"has_previous": {Type: "boolean"},
			},
		},
	}
}
