// Package query parses list-endpoint query strings into an Intent and compiles
// intents into squirrel SELECT builders against a resource's column catalog.
//
// Grammar, parameters joined by '&':
//
//	limit=<1-3 digits>
//	sort_by=<dir>(<field>[,<field>...])[,<dir>(<field>...)]*
//	[or|and]?<property>([<and|or>])?([<comparator>])?=<value>
//
// Comparators are gt, gte, lt, lte, eq, ne, like and cursor, matched case-insensitively.
package query
