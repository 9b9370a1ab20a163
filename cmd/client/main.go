package main

import (
	"fmt"
	"os"
)

// Usage examples on the command line:
// > API_BASE_URL=http://localhost:8080 go run . send --name "Erika" --email erika@example.com --message "Hallo"
// > FALLBACK_FILE=contact-submissions.json go run . pending
// > go run . flush
// > go run . bench --sizes 100,1000
func main() {
	root, e := newRootCmd()
	err := root.Execute()
	if closeErr := e.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
