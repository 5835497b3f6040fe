package uploads

import "github.com/JaimeStill/depot/pkg/openapi"

// Schemas returns the component schemas referenced by the upload routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Staged": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"path":         {Type: "string", Description: "Absolute staged path"},
				"name":         {Type: "string", Description: "Staged file name"},
				"system_name":  {Type: "string"},
				"size_bytes":   {Type: "integer", Format: "int64"},
				"content_type": {Type: "string"},
				"page_count":   {Type: "integer", Description: "PDF page count"},
				"orientation":  {Type: "string", Description: "EXIF orientation found in a base64 image"},
			},
		},
		"BatchResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"filename": {Type: "string"},
				"staged":   openapi.SchemaRef("Staged"),
				"error":    {Type: "string"},
			},
		},
		"Base64Command": {
			Type:     "object",
			Required: []string{"filename", "payload"},
			Properties: map[string]*openapi.Schema{
				"filename":  {Type: "string", Example: "photo"},
				"payload":   {Type: "string", Description: "Base64 image data, optionally with a data URI prefix"},
				"overwrite": {Type: "boolean", Default: false},
			},
		},
		"TransferCommand": {
			Type:     "object",
			Required: []string{"filename"},
			Properties: map[string]*openapi.Schema{
				"dir":      {Type: "string", Description: "Staging directory, absolute or relative to the staging base"},
				"filename": {Type: "string"},
				"bucket":   {Type: "string", Description: "Defaults to the configured bucket"},
			},
		},
		"Transfer": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"system_name":    {Type: "string"},
				"local_path":     {Type: "string"},
				"file_name":      {Type: "string"},
				"bucket":         {Type: "string"},
				"object_key":     {Type: "string", Example: "defaults/20261019/3b1f...e2.jpg"},
				"object_url":     {Type: "string"},
				"size_bytes":     {Type: "integer", Format: "int64"},
				"content_type":   {Type: "string"},
				"provider":       {Type: "string"},
				"transferred_at": {Type: "string", Format: "date-time"},
			},
		},
		"TransferPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Transfer")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}

var uploadOp = &openapi.Operation{
	Summary:     "Stage uploaded files",
	Description: "Stages every file part. One file responds 201 with its record; several respond 200 with per-file results.",
	RequestBody: openapi.RequestBodyMultipart("file"),
	Responses: map[int]*openapi.Response{
		200: {Description: "Batch results", Content: map[string]*openapi.MediaType{
			"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("BatchResult")}},
		}},
		201: openapi.ResponseJSON("Staged file", "Staged"),
		400: openapi.ResponseRef("BadRequest"),
		403: openapi.ResponseRef("Forbidden"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var base64Op = &openapi.Operation{
	Summary:     "Stage a base64 image",
	RequestBody: openapi.RequestBodyForm("Base64Command"),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Staged image", "Staged"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var transferOp = &openapi.Operation{
	Summary:     "Transfer a staged file to object storage",
	RequestBody: openapi.RequestBodyJSON("TransferCommand", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Transfer record", "Transfer"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		502: openapi.ResponseRef("BadGateway"),
	},
}

var listTransfersOp = &openapi.Operation{
	Summary: "List recorded transfers",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Matches file name or object key", false),
		openapi.QueryParam("sort", "string", "Sort fields, e.g. -TransferredAt", false),
		openapi.QueryParam("system_name", "string", "Exact system name", false),
		openapi.QueryParam("bucket", "string", "Exact bucket", false),
		openapi.QueryParam("provider", "string", "Exact provider", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Transfer page", "TransferPage"),
	},
}

var findTransferOp = &openapi.Operation{
	Summary:    "Find a recorded transfer",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Transfer ID")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Transfer record", "Transfer"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
