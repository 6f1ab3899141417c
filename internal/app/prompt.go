package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PassphraseEnv names the variable consulted before prompting for the
// encryption passphrase.
const PassphraseEnv = "FAT_PASSPHRASE"

// ReadSecret prints prompt to stderr and reads a line from stdin without
// echoing it when stdin is a terminal.
func ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading from terminal: %w", err)
		}
		return string(b), nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading from stdin: %w", err)
	}
	if err == io.EOF && line == "" {
		return "", fmt.Errorf("reading from stdin: %w", io.ErrUnexpectedEOF)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// passphrase returns $FAT_PASSPHRASE or prompts for it.
func passphrase() (string, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return p, nil
	}
	return ReadSecret("Passphrase: ")
}
