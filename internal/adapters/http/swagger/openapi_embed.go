package swagger

import _ "embed"

// Document is the OpenAPI 3 description of the dashboard API.
//
//go:embed openapi.yaml
var Document []byte
