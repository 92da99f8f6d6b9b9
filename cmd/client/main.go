package main

import "herdbook/cmd/client/cmd"

func main() {
	cmd.Execute()
}
