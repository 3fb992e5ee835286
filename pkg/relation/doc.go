// Package relation classifies user-defined relations into tiers and derives
// their storage-facing table names.
//
// Each tier carries a fixed prefix:
//
//	Manual    ""     my_session
//	Lookup    "#"    #my_session
//	Imported  "_"    _my_session
//	Computed  "__"   __my_session
//	Part      n/a    <master table name>__my_session
//
// A Relation is the immutable descriptor of one relation type. Its table name
// is derived on first access and cached on the descriptor. Part relations
// additionally need their master bound (BindMaster) before the name can be
// derived.
package relation
