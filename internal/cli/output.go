package cli

import (
	"fmt"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

func printResult(result *kindle.Result, verbose bool) {
	fmt.Printf("Found %d books with %d highlights\n", len(result.Books), len(result.Highlights))

	if verbose {
		fmt.Println("\n=== Books ===")
		for i, book := range result.Books {
			author := book.Author
			if author == "" {
				author = "(no author)"
			}
			fmt.Printf("%d. %q by %s (%d highlights)\n", i+1, book.Title, author, len(result.HighlightsFor(book.ID)))
		}
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\n%d books failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  [ERROR] %q: %s\n", f.BookTitle, f.Message)
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("  [WARN] %s\n", w)
	}
}
