package swagger

import _ "embed"

// OpenAPI is the v1 API document served on /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
