package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	approuters "github.com/Rojan-K/ChatAPP/internal/app_routers"
	"github.com/Rojan-K/ChatAPP/internal/configuration"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Optional; secrets usually come from the real environment.
	_ = godotenv.Load()

	container, err := configuration.BuildContainer(*configPath)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()

	approuters.StartServer(container)
}
