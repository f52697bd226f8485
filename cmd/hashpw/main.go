// Command hashpw reads an admin password from stdin and prints its bcrypt hash
// for the admin.passwordHash setting.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"qimat/internal/infra/auth"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		slog.Error("Failed to read password from stdin", slog.Any("error", err))
		os.Exit(1)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		slog.Error("Password must not be empty")
		os.Exit(1)
	}

	hash, err := auth.NewBcryptHasher().Hash(password)
	if err != nil {
		slog.Error("Failed to hash password", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Println(hash)
}
