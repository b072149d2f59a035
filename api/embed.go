// Package api embeds the OpenAPI document describing the HTTP interface.
package api

import _ "embed"

// OpenAPISpec is the raw openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
