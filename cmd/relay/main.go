package main

import (
	"net/http"

	"zhiyi-cms/config"
	"zhiyi-cms/logger"
	"zhiyi-cms/relay"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadRelay()
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "zhiyi-relay")

	routes, err := relay.Routes(cfg.OpenAIUpstream, cfg.AnthropicUpstream, cfg.GoogleUpstream)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid relay configuration")
	}

	gin.SetMode(gin.ReleaseMode)
	router := relay.NewRouter(routes)

	event := log.Info().Str("address", "http://localhost:"+cfg.Port)
	for _, route := range routes {
		event = event.Str(route.Prefix, route.Upstream.String())
	}
	event.Msg("Relay server running")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("Relay server failed")
	}
}
