// Package openapi exports a form's composite schema as an OpenAPI 3 document
// so downstream systems can see the submission contract. The kin-openapi
// types stay behind this package.
package openapi
