package main

import (
	"fmt"
	"os"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		list, err := banks.LoadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (%d banks)\n", path, len(list))
	}

	if failed {
		os.Exit(1)
	}
}
