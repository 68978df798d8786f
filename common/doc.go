// Package common provides shared constants, types, utilities, and interfaces
// used throughout the WG Manager application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like file names, kernel module
//     paths, and timeouts
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for credential storage and diagnostics sinks
//   - Logger: Leveled logging with optional file output and rotation
//   - Utils: Common utility functions for configuration directories
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/wg-manager/common"
//
//	// Use constants
//	marker := common.KernelModulePath
//
//	// Use logger
//	common.LogInfo("Resolved backend: %s", kind)
//
//	// Check errors
//	if errors.Is(err, common.ErrTunnelNotFound) {
//	    // Handle missing tunnel
//	}
package common
