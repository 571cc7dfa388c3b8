// Command cpipeline inspects and bootstraps a cpipeline backend deployment.
//
// Usage:
//
//	cpipeline config show [--json]
//	cpipeline config check
//	cpipeline bootstrap superuser
//	cpipeline health
//	cpipeline token issue --email admin@example.com --password ...
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(&rootOptions{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
