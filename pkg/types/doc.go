// Package types defines the entity rows, the form action state, backend
// configuration, and the standard errors shared by the rewards dashboard.
//
// Every entity is a flat row identified by a string ID (UUID v7). Struct tags
// carry three concerns: `db` names the column, `form` names the submitted
// field, and `validate` holds the constraints evaluated by internal/schema.
package types
