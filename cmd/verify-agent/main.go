package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"logistics-dashboard/internal/ai"
	"logistics-dashboard/internal/core"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey)
	ctx := context.Background()

	text, sortable, flags := core.ShipmentSchema.FieldNames()
	fields := ai.EntityFields{
		Entity:   core.ShipmentSchema.Entity,
		Text:     text,
		Statuses: []string{"PENDING", "PROCESSING", "IN_TRANSIT", "DELAYED", "DELIVERED", "CANCELLED"},
		Flags:    flags,
		Sort:     sortable,
	}

	request := "Delayed or in-transit shipments heading to Leeds, newest first."
	if len(os.Args) > 1 {
		request = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("INTERPRETING REQUEST: %s\n", request)
	result, err := agent.InterpretQuery(ctx, request, fields)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n--- QUERY ---\n")
	if result.Clarification != "" {
		fmt.Printf("Clarification: %s\n", result.Clarification)
		return
	}
	q := result.Query
	fmt.Printf("Reasoning: %s\n", result.Reasoning)
	fmt.Printf("Search:    %q\n", q.Search)
	fmt.Printf("Statuses:  %s\n", strings.Join(q.Statuses, ", "))
	for name, v := range q.Flags {
		fmt.Printf("Flag:      %s=%t\n", name, v)
	}
	fmt.Printf("Sort:      %s %s\n", q.SortField, q.SortDir)
}
