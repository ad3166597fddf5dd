package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/database"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

func openSessions(cfg *config.Config) (*session.Manager, func(), error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store, err := session.NewStore(db.DB, session.KeyConfig{
		EncryptionKey: cfg.Session.EncryptionKey,
		Passphrase:    cfg.Session.Passphrase,
		KeyFilePath:   cfg.Session.KeyFilePath,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return session.NewManager(store), func() { db.Close() }, nil
}

// SessionImportCommand stores a Cookie header copied from a logged-in browser.
type SessionImportCommand struct {
	Region       string
	Cookies      string
	CookiesFile  string
	UserAgent    string
	DatabasePath string

	cfg   *config.Config
	stdin io.Reader
}

func NewSessionImportCommand(cfg *config.Config) *SessionImportCommand {
	return &SessionImportCommand{cfg: cfg, stdin: os.Stdin}
}

func (cmd *SessionImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("session-import", flag.ContinueOnError)

	fs.StringVarP(&cmd.Region, "region", "r", cmd.cfg.Kindle.Region, "Amazon region code the cookies belong to")
	fs.StringVarP(&cmd.Cookies, "cookies", "c", "", "Cookie header value, e.g. 'session-id=...; at-main=...'")
	fs.StringVarP(&cmd.CookiesFile, "cookies-file", "f", "", "Read the cookie header from a file ('-' for stdin)")
	fs.StringVar(&cmd.UserAgent, "user-agent", cmd.cfg.Kindle.UserAgent, "User agent of the browser the cookies came from")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s session-import --region <code> (--cookies <header> | --cookies-file <path>)\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Store an Amazon session for the notebook fetcher.\n")
		fmt.Fprintf(os.Stderr, "Copy the Cookie request header from the browser's network tab while\n")
		fmt.Fprintf(os.Stderr, "viewing read.amazon.<region>/notebook.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Cookies == "" && cmd.CookiesFile == "" {
		fs.Usage()
		return fmt.Errorf("one of --cookies or --cookies-file is required")
	}
	if cmd.Cookies != "" && cmd.CookiesFile != "" {
		return fmt.Errorf("--cookies and --cookies-file are mutually exclusive")
	}
	if _, err := kindle.LookupRegion(cmd.Region); err != nil {
		return err
	}
	cmd.cfg.Database.Path = cmd.DatabasePath
	return nil
}

func (cmd *SessionImportCommand) cookieHeader() (string, error) {
	if cmd.Cookies != "" {
		return cmd.Cookies, nil
	}

	var r io.Reader = cmd.stdin
	if cmd.CookiesFile != "-" {
		file, err := os.Open(cmd.CookiesFile)
		if err != nil {
			return "", fmt.Errorf("failed to open cookies file: %w", err)
		}
		defer file.Close()
		r = file
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "Cookie:")
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read cookies: %w", err)
	}
	return strings.Join(lines, "; "), nil
}

func (cmd *SessionImportCommand) Run() error {
	header, err := cmd.cookieHeader()
	if err != nil {
		return err
	}
	region, err := kindle.LookupRegion(cmd.Region)
	if err != nil {
		return err
	}

	manager, closeDB, err := openSessions(cmd.cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sess, err := manager.Import(region.Code, region.Host, header, cmd.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}

	fmt.Printf("Imported %d cookies for %s (%s)\n", len(sess.Cookies), region.DisplayName, region.Host)
	return nil
}

// SessionListCommand prints the stored sessions. Cookies are never shown.
type SessionListCommand struct {
	DatabasePath string

	cfg *config.Config
}

func NewSessionListCommand(cfg *config.Config) *SessionListCommand {
	return &SessionListCommand{cfg: cfg}
}

func (cmd *SessionListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("session-list", flag.ContinueOnError)
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.cfg.Database.Path = cmd.DatabasePath
	return nil
}

func (cmd *SessionListCommand) Run() error {
	manager, closeDB, err := openSessions(cmd.cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sessions, err := manager.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions stored. Use 'session-import' to add one.")
		return nil
	}

	fmt.Println("Stored sessions")
	fmt.Println("===============")
	for _, s := range sessions {
		lastUsed := "never"
		if s.LastUsedAt != nil {
			lastUsed = s.LastUsedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-8s %3d cookies  imported %s  last used %s\n",
			s.Region, s.CookieCount, s.UpdatedAt.Format("2006-01-02 15:04"), lastUsed)
	}
	return nil
}

// SessionClearCommand deletes a region's stored session.
type SessionClearCommand struct {
	Region       string
	DatabasePath string

	cfg *config.Config
}

func NewSessionClearCommand(cfg *config.Config) *SessionClearCommand {
	return &SessionClearCommand{cfg: cfg}
}

func (cmd *SessionClearCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("session-clear", flag.ContinueOnError)
	fs.StringVarP(&cmd.Region, "region", "r", cmd.cfg.Kindle.Region, "Amazon region code")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := kindle.LookupRegion(cmd.Region); err != nil {
		return err
	}
	cmd.cfg.Database.Path = cmd.DatabasePath
	return nil
}

func (cmd *SessionClearCommand) Run() error {
	manager, closeDB, err := openSessions(cmd.cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := manager.Clear(cmd.Region); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Printf("Session for %s removed\n", cmd.Region)
	return nil
}
