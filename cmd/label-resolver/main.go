// Command label-resolver resolves label references against layered
// metadata trees and serves the resolution tools to editors and assistants.
package main

import "label-resolver/internal/cli"

func main() {
	cli.Execute()
}
