// Package crews holds the built-in crew definitions.
package crews

import _ "embed"

//go:embed customer_support.yaml
var CustomerSupport []byte

// DefaultName is the file name reported for the built-in crew.
const DefaultName = "customer_support.yaml"
