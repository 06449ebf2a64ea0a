package main

import (
	"flag"
	"net/http"

	"github.com/ademidova/go-stock-keeper/internal/devserver"
	"github.com/ademidova/go-stock-keeper/internal/logger"
)

func main() {
	addr := flag.String("a", "localhost:8080", "address to listen on")
	flag.Parse()

	log := logger.NewLogger("stock-keeper-devserver")
	server := devserver.New(log)

	log.Info().Str("addr", *addr).Msg("dev backend listening")
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		log.Fatal().Err(err).Msg("dev backend stopped")
	}
}
