// Package shared holds helpers used by more than one package that do not
// belong to any domain or architectural layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that captures records for assertions
//   - Contract fixtures rendered as CSV or XLSX uploads
//
// testutil must only depend on the domain contracts and third-party libraries
// so every internal package can import it from its tests.
package shared
