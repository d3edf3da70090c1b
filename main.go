package main

import (
	"Stockly/Models"
	"Stockly/Router"
	"Stockly/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	loadErr := godotenv.Load(".env")
	logger.Setup()
	if loadErr != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	Models.Connect()
	Router.Serve()
}
