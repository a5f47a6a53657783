package main

import (
	"context"
	"flag"
	"log"
	"time"

	"hivemind/simulator"
)

func main() {
	users := flag.Int("users", 10, "number of simulated users")
	ideas := flag.Int("ideas", 5, "number of seeded ideas")
	duration := flag.Duration("duration", 2*time.Minute, "simulation run time")
	serverURL := flag.String("server", "http://localhost:8080", "target server URL")
	flag.Parse()

	config := simulator.SimConfig{
		NumUsers:         *users,
		NumIdeas:         *ideas,
		SimulationTime:   *duration,
		PostFrequency:    6.0,
		CommentFrequency: 12.0,
		VoteFrequency:    20.0,
		ToggleFrequency:  10.0,
		ZipfS:            1.07,
		ServerURL:        *serverURL,
	}

	log.Printf("Simulation configuration:")
	log.Printf("- Server URL: %s", config.ServerURL)
	log.Printf("- Users: %d, seeded ideas: %d", config.NumUsers, config.NumIdeas)
	log.Printf("- Duration: %v", config.SimulationTime)
	log.Printf("- Zipf parameter: %.2f", config.ZipfS)

	sim := simulator.NewSimulator(config)
	if err := sim.Run(context.Background()); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}
