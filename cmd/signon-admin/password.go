package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/signonhq/signon/internal/password"
)

func runHashPassword(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", 0, "bcrypt cost (0 uses the bcrypt default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plain, err := readPassword("password: ")
	if err != nil {
		return err
	}

	hash, err := password.Hash(plain, *cost)
	if err != nil {
		return err
	}
	return writef(os.Stdout, "%s\n", hash)
}

func runCheckPassword(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("check-password", flag.ContinueOnError)
	hash := fs.String("hash", "", "stored bcrypt hash to verify against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *hash == "" {
		return errors.New("-hash is required")
	}

	plain, err := readPassword("password: ")
	if err != nil {
		return err
	}

	ok, err := password.Verify(plain, *hash)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("password does not match hash")
	}
	return writef(os.Stdout, "ok\n")
}

// readPassword reads one line from stdin. Works for both interactive use and
// piped input.
func readPassword(prompt string) (string, error) {
	if err := writef(os.Stderr, "%s", prompt); err != nil {
		return "", err
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
