package main

import "github.com/kozaktomas/fingerprint-attendance/cmd"

func main() {
	cmd.Execute()
}
