// Command vapid prints a fresh VAPID key pair for the webPush config section.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		slog.Error("Failed to generate VAPID keys", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("webPush:\n  publicKey: %s\n  privateKey: %s\n", publicKey, privateKey)
}
