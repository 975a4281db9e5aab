// quizcheck validates a quiz JSON file against the same rules host:create
// enforces, so hosts can check their content before going live.
//
// Usage: quizcheck <file.json>
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stemsi/quizlive-backend/internal/model"
	"github.com/stemsi/quizlive-backend/internal/validator"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: quizcheck <file.json>")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	var quiz model.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	validator.Setup()
	if fields := validator.Struct(&quiz); fields != nil {
		fmt.Fprintf(os.Stderr, "%s is not a valid quiz:\n", os.Args[1])
		for field, msg := range fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: ok (%q, %d questions)\n", os.Args[1], quiz.Title, len(quiz.Questions))
}
