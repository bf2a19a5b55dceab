// Package api embeds the OpenAPI document of the console HTTP API.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
