// Where: cmd/trigger-jenkins-build/main.go
// What: CLI entrypoint.
// Why: Execute trigger-jenkins-build commands with configured dependencies.
package main

import (
	"os"

	"github.com/joyent/trigger-jenkins-build/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
