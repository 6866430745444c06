// Package common defines data structures shared by the application commands.
package common

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

const AppName = "lgc"

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	DatabaseDir string // DatabaseDir is the directory holding the counter database YAML files.
	LogFilePath string // LogFilePath is the path to the log file, empty when logging to stdout.
	Timestamp   string // Timestamp is the application startup time.
	Version     string // Version is the version of the application.
	Debug       bool   // Debug indicates that debug logging is enabled.
}
