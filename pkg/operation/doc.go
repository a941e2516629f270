// Package operation defines the GraphQL operation and result types that flow
// through a client's exchange pipeline.
//
// An Operation is an immutable description of one request: its kind, the
// document's operation name, the query text, variables and free-form context
// metadata. A Result is the outcome correlated to an Operation, carrying either
// data or a CombinedError.
//
// Operations are built from raw query text with New, which parses the document
// with gqlparser to determine the operation kind and name, and derives a stable
// Key from the query text and variables:
//
//	op, err := operation.New(`query GetUser { user { id } }`, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(op.Kind, op.OperationName) // query GetUser
//
// This is a leaf package with no internal dependencies.
package operation
