// SPDX-License-Identifier: MPL-2.0

// Package modload defines modules on demand and answers which content
// providers are visible to a module for a given resource path.
//
// A Loader asks its Catalog for a module's specification the first time the
// module is requested, binds each declared dependency (loading dependent
// modules recursively), and publishes the linked Module to every caller.
// Each name is defined at most once per Loader; a failed definition is
// remembered and returned to every later caller.
//
// Visibility follows the six filters on each dependency. A module sees a
// path of a dependency when the dependency's import filter accepts it; it
// passes the path on to its own dependents only when the export filter
// accepts it as well. Resolved provider chains are cached per path and
// shared between paths and modules through a prefix trie, so two paths
// with equal chains return the same slice.
package modload
