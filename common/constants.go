// Package common provides shared constants, types, and utilities
// used across the WG Manager application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.wgmanager.app"
	// AppName is the display name of the application.
	AppName = "WG Manager"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "wg-manager"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	TunnelStoreFileName = "tunnels.db"
	CredentialsFileName = ".credentials"
	LogFileName         = "wg-manager.log"
)

// Kernel module paths probed during backend resolution.
const (
	// KernelModulePath is the sysfs marker present when the in-kernel
	// WireGuard implementation is loaded.
	KernelModulePath = "/sys/module/wireguard"
	// KernelModuleVersionPath exposes the loaded module's version string.
	KernelModuleVersionPath = "/sys/module/wireguard/version"
)

// Default timeouts and intervals.
const (
	// DiagnosticsTimeout bounds a single metadata upload. Diagnostics are
	// best-effort and must never stall the rest of the application.
	DiagnosticsTimeout = 10 * time.Second
	// NotificationExpiry is how long desktop notifications remain visible.
	NotificationExpiry = 5 * time.Second
)

// Diagnostics metadata keys.
const (
	MetadataKeyBackend        = "backend"
	MetadataKeyBackendVersion = "backendVersion"
)
