package errors_test

import (
	"fmt"

	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	var err error = errors.NewNotFoundError("product", "0061234567890")

	if errors.IsNotFound(err) {
		fmt.Println("Product not found")
	}

	// Output: Product not found
}

// Example_mergeError shows how an unmergeable pair is reported.
func Example_mergeError() {
	var err error = errors.NewMergeError("0061234567890", []string{"product_name"}, nil)

	var mergeErr *errors.MergeError
	if errors.As(err, &mergeErr) {
		fmt.Printf("review %s: %v\n", mergeErr.IDMatch, mergeErr.Fields)
	}

	// Output: review 0061234567890: [product_name]
}

// Example_skippedTaxonomyBlocks shows how skipped blocks can be filtered.
func Example_skippedTaxonomyBlocks() {
	skipped := []error{
		errors.NewMalformedTaxonomyError("categories.txt", 20, "it: Grappa", "first language line is not en:"),
		errors.NewIOError("read", "categories.txt", fmt.Errorf("unexpected EOF")),
	}

	count := 0
	for _, err := range skipped {
		if errors.IsMalformedTaxonomy(err) {
			count++
		}
	}
	fmt.Println(count, "malformed block(s)")

	// Output: 1 malformed block(s)
}
