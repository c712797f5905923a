package main

import "job-auction/cmd"

func main() {
	cmd.Execute()
}
