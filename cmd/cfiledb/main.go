/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/cfiledb/cfiledb/cmd/cfiledb/cmd"
)

func main() {
	cmd.Execute()
}
