// cmd/main.go
package main

import cmd "github.com/mwiater/benchviolin/cmd/benchviolin"

// main starts the benchviolin CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
