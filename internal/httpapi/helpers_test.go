package httpapi

import (
	"io"
	"log/slog"
	"os"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}
