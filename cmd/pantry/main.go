// Command pantry encodes JSON and YAML documents into typed records.
package main

import "github.com/mesh-intelligence/pantry/internal/cli"

func main() {
	cli.Execute()
}
