// Package main provides the churnctl binary entry point.
package main

import (
	"fmt"
	"os"
	"runtime"

	"churnctl/internal/commands"
	"churnctl/internal/infrastructure"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()
	defer infrastructure.CloseLogFile()

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
