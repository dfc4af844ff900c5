/*
Copyright © 2026 SupportCrew Authors
*/
package main

import "SupportCrew/internal/cli"

func main() {
	cli.Execute()
}
