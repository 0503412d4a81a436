// Package config provides the Config Node tree that every keyplan stage
// consumes.
//
// A config document is decoded into a tree of [Node] values: [Null], [Bool],
// [Number], [String], [List] and the insertion-ordered [*Map]. Map order is
// preserved from the source document because zones, columns, rows and units
// are all processed in declaration order.
//
// # Core Operations
//
//   - [Decode], [Load]: YAML, JSON or TOML input to a Node tree
//   - [Merge], [Extend]: deep merge with "$unset" deletion
//   - [Path]: breadcrumb trail used to locate errors
//   - [AsMap], [Unexpected], [StringList], ...: closed-schema checks
//
// # Merge Rules
//
// [Merge] is evaluated by the runtime type of its second argument:
//
//	nil or null      -> first argument unchanged
//	"$unset"         -> absent (the caller deletes the key)
//	type change      -> second argument replaces the first
//	map / map        -> per-key recursive merge
//	list / list      -> index-wise recursive merge
//	scalar / scalar  -> second argument wins
//
// Neither argument is modified; the result never aliases them.
package config
