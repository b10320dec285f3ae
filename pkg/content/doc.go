// SPDX-License-Identifier: MPL-2.0

// Package content defines the local content provider contract consumed by the
// module loader, a filtering adapter that narrows what a provider serves, and
// two providers: an in-memory one and one backed by an afero filesystem.
//
// A provider is addressed by directory paths: Paths lists every directory it
// has items in, and Class/Resource fetch one item by its full slash path.
// Providers are used as map keys by the loader's chain cache, so
// implementations must be comparable; the ones in this package are pointers.
package content
