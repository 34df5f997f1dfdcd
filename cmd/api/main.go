package main

import "github.com/Raj-Randive/soar-school-management-system/cmd/api/cmd"

func main() {
	cmd.Execute()
}
