// Command uss inspects, searches and converts spatial strings.
//
// Usage:
//
//	uss info scan.uss
//	uss text --pages 1,2 scan.zip
//	uss search --rect 100,200,600,260 --page 1 --resolution word scan.uss
//	uss convert page.json page.hocr
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
