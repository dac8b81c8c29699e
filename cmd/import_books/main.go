// Command import_books bulk-loads CSV files into a lending-tracker snapshot.
// Rows need only a title and author; duplicate title+author pairs are skipped.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"lending-tracker/library"
)

func main() {
	dataPath := flag.String("data", "books_pro.json", "Snapshot file to create or extend")
	noDupes := flag.Bool("skip-duplicates", true, "Skip rows whose title+author already exist")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: import_books [flags] <file.csv> [more.csv ...]")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := library.NewStore(logger)
	if err := store.LoadJSON(*dataPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}
	before := store.Len()

	successCount := 0
	errorCount := 0
	for _, path := range flag.Args() {
		fmt.Printf("Importing %s... ", path)
		added, err := store.ImportCSV(path, *noDupes)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (%d books)\n", added)
		successCount += added
	}

	if err := store.SaveJSON(*dataPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books (collection %d -> %d)\n", successCount, before, store.Len())
	fmt.Printf("Files with errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCurrent inventory:")
		r := &library.PlainRenderer{Out: os.Stdout}
		r.Inventory(store.Books())
	}
}
