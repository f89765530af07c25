// devstub runs the development stand-in for the municipal backend so the
// field client can be exercised without the real service.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/WasteWatch/WW-Client/internal/devstub"
)

func main() {
	_ = godotenv.Load(".env.local")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}
	dbPath := os.Getenv("DEVSTUB_DB")
	if dbPath == "" {
		dbPath = "devstub.db"
	}

	server, err := devstub.Open(dbPath)
	if err != nil {
		log.Fatal("Failed to open devstub database: ", err)
	}

	// A known account so `wastewatch login` works out of the box.
	if _, err := server.SeedUser("Field Employee", "employee@example.com", "password123", "EMPLOYEE"); err != nil {
		log.Printf("seed user: %v (likely already present)", err)
	}

	fmt.Println("Devstub listening on port :" + port + "...")
	if err := http.ListenAndServe("0.0.0.0:"+port, server.Router()); err != nil {
		log.Fatal(err)
	}
}
