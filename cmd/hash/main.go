// Package main is a small operator tool that prints the password digest for
// a raw password, in the format the users table stores. Useful for seeding
// the first admin account by hand:
//
//	portfoly-hash 'the-password' | psql -c "UPDATE users SET password_digest = ..."
package main

import (
	"fmt"
	"os"

	"github.com/portfoly/portfoly/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}
	fmt.Println(auth.HashPassword(os.Args[1]))
}
