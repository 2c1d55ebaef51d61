// Foldercheck records directory snapshots and reports what changed between runs.
package main

import "github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/cli"

func main() {
	cli.Execute()
}
