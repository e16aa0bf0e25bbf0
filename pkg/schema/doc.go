// Package schema validates node requests against the sockets a node declares.
//
// Each declared input maps to a Type: INT and FLOAT widgets honour their
// min/max options, COMBO inputs accept only their listed choices and wildcard
// or tensor sockets accept anything the host passes.
//
// Basic usage:
//
//	err := schema.ValidateRequest(node.Spec(), req.Inputs)
//	for _, e := range schema.ValidationErrors(err) {
//	    log.Println(e)
//	}
package schema
