package main

import "github.com/aussiebroadwan/marketauth/cmd/auth/cmd"

func main() {
	cmd.Execute()
}
