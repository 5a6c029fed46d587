package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"hmr-builders.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = crypto.HashPassword
	fatalfFn       = log.Fatalf
)

// resolvePassword takes the first argument, falling back to GENHASH_PASSWORD.
func resolvePassword(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if env := os.Getenv("GENHASH_PASSWORD"); env != "" {
		return env, nil
	}
	return "", errors.New("usage: genhash <password>")
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
