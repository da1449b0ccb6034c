// Package cli provides the command-line interface for the scout application.
package cli

import (
	"github.com/smartbook/scout/internal/app"
	"github.com/spf13/cobra"
)

// SetApp stores the Application for command handlers
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}

var globalApp *app.Application
