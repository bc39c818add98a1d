package imports

import (
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/openapi"
)

type spec struct {
	Images *openapi.Operation
	PDF    *openapi.Operation
}

func multipartBody(fileField, description string) *openapi.RequestBody {
	return &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {
				Schema: &openapi.Schema{
					Type:     "object",
					Required: []string{fileField},
					Properties: map[string]*openapi.Schema{
						fileField:   {Type: "string", Format: "binary", Description: description},
						"name":      {Type: "string"},
						"folder_id": {Type: "string", Format: "uuid"},
					},
				},
			},
		},
	}
}

var Spec = spec{
	Images: &openapi.Operation{
		Summary:     "Import images",
		Description: "Create a document with one page per uploaded image, in upload order",
		Parameters:  []*openapi.Parameter{openapi.HeaderParam(identity.Header, "Owner identity")},
		RequestBody: multipartBody("files", "Page images; repeat the field for each page"),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created document", "DocumentDetail"),
			400: openapi.ResponseRef("BadRequest"),
			413: {Description: "Upload exceeds the maximum size"},
			422: {Description: "An image could not be decoded"},
		},
	},
	PDF: &openapi.Operation{
		Summary:     "Import PDF",
		Description: "Create a document by rasterizing every page of a PDF",
		Parameters:  []*openapi.Parameter{openapi.HeaderParam(identity.Header, "Owner identity")},
		RequestBody: multipartBody("file", "PDF file"),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created document", "DocumentDetail"),
			400: openapi.ResponseRef("BadRequest"),
			413: {Description: "Upload exceeds the maximum size"},
			415: {Description: "File is not a PDF"},
			422: {Description: "PDF could not be read"},
		},
	},
}
