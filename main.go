package main

import "github.com/nielsjsc/musicbee-wrapped/cmd"

func main() {
	cmd.Execute()
}
