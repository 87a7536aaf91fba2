package main

import "ticket-etl/cmd"

func main() {
	cmd.Execute()
}
