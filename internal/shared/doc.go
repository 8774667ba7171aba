// Package shared holds cross-cutting utilities that belong to no single
// layer. Keep it small: test helpers under testutil, nothing with business
// logic, nothing that would create dependency cycles with other internal
// packages.
package shared
