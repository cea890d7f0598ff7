// Command explain prints a SID file's identifier/SID/type table, the Go
// equivalent of the original example's "list" subcommand.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/samsirohi11/coreconf/sidcat"
)

func main() {
	sidFile := flag.String("sid", "", "path to the SID file (.sid JSON)")
	flag.Parse()

	if *sidFile == "" {
		fmt.Fprintln(os.Stderr, "-sid is required")
		os.Exit(1)
	}

	catalog, err := sidcat.LoadFile(*sidFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load SID file:", err)
		os.Exit(1)
	}

	entries := catalog.All()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sid < entries[j].Sid })

	fmt.Printf("SID mappings for: %s\n", catalog.ModuleName)
	fmt.Println("----------------------------------------------------------------")
	for _, e := range entries {
		fmt.Printf("%8d  %-40s %s\n", e.Sid, e.Identifier, e.Type.Kind)
	}
}
