package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/adityakmr7/focus25-sub001/cmd"
)

func main() {
	// A .env in the working directory may set FOCUS25_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: loading .env: %v\n", err)
	}
	cmd.Execute()
}
