// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	source := strings.TrimSpace(os.Getenv("PLAYLIST_SOURCE"))
	user := strings.TrimSpace(os.Getenv("PLAYLIST_USERNAME"))
	pass := strings.TrimSpace(os.Getenv("PLAYLIST_PASSWORD"))
	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	dbPath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))

	if source == "" {
		warn("PLAYLIST_SOURCE empty — the checker CLI will need -source.")
	} else if !strings.Contains(source, "://") {
		if _, err := os.Stat(source); err != nil {
			fail("PLAYLIST_SOURCE is not a URL and the file does not exist: " + source)
		}
		ok("PLAYLIST_SOURCE is a readable file")
	} else {
		ok("PLAYLIST_SOURCE=" + source)
	}

	if user != "" && pass == "" {
		warn("PLAYLIST_USERNAME set without PLAYLIST_PASSWORD; the CLI will prompt.")
	}

	if v := os.Getenv("MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			fail("MAX_ATTEMPTS must be an integer >= 1, got " + v)
		}
	}
	if v := os.Getenv("MAX_CONCURRENT_CHECKS"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			fail("MAX_CONCURRENT_CHECKS must be an integer >= 1, got " + v)
		}
	}

	// API-only settings below; warnings rather than failures so the CLI can
	// run without any of them.
	if admin == "" {
		warn("ADMIN_API_KEYS empty — /api/check will be open to everyone.")
	}
	if pub == "" {
		warn("PUBLIC_API_KEYS empty — /api/runs will be open to everyone.")
	}
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	if addr == "" {
		warn("ADDR empty; the API default will be used.")
	} else {
		ok("ADDR=" + addr)
	}
	if dbPath == "" {
		warn("DATABASE_PATH empty — API run history will be in-memory only.")
	} else {
		ok("DATABASE_PATH present")
	}

	ok("preflight passed")
}
