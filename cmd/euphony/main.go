// Command euphony is a terminal music player.
package main

import "github.com/tessro/euphony/internal/cli"

func main() {
	cli.Execute()
}
