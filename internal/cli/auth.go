package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/kindle-notebook/internal/auth"
)

// HashPasswordCommand prints a bcrypt hash for AUTH_PASSWORD_HASH.
type HashPasswordCommand struct {
	Cost int

	stdin  io.Reader
	stdout io.Writer
}

func NewHashPasswordCommand() *HashPasswordCommand {
	return &HashPasswordCommand{stdin: os.Stdin, stdout: os.Stdout}
}

func (cmd *HashPasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("auth-hash-password", flag.ContinueOnError)
	fs.IntVar(&cmd.Cost, "cost", 12, "bcrypt cost factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: echo -n 'password' | %s auth-hash-password [--cost 12]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Read a password from stdin and print its bcrypt hash for AUTH_PASSWORD_HASH.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	return fs.Parse(args)
}

func (cmd *HashPasswordCommand) Run() error {
	line, err := bufio.NewReader(cmd.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	hash, err := auth.HashPassword(password, cmd.Cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.stdout, hash)
	return nil
}
