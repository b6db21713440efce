// Package audit carries the identity of an acting administrative principal
// through hierarchy mutations.
//
// Every write performed against the edge store may be annotated with a
// Context: who made the change (Modifier), why (ModCode), and a generated
// modification ID that ties the stored record back to the administrative
// operation that produced it. The hierarchy core treats the Context as an
// opaque value and forwards it unchanged to the store; interpretation is
// entirely the store's concern.
//
// A Context can travel on a context.Context so that composition layers do
// not need to thread it through every call site explicitly:
//
//	ctx = audit.WithContext(ctx, audit.New("admin1", "role.addInheritance"))
//	...
//	if ac := audit.FromContext(ctx); ac != nil {
//		// attach to the write
//	}
package audit
