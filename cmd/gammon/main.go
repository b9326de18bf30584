// Command gammon is the command line tool for the backgammon engine.
package main

import "github.com/yourusername/gammon/internal/cli"

func main() {
	cli.Execute()
}
