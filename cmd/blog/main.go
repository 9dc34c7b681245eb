package main

import (
	"github.com/fluxynet/blog/internal/cmd"
	"github.com/fluxynet/blog/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Fatal("blog exited with error", map[string]any{
			"error": err.Error(),
		})
	}
}
