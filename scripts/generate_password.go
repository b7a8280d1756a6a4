// scripts/generate_password.go
//
// Generates a bcrypt hash for seeding accounts by hand:
//
//	go run scripts/generate_password.go <password> [cost]
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password> [cost]")
	}

	password := os.Args[1]
	cost := bcrypt.DefaultCost
	if len(os.Args) > 2 {
		c, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("Invalid cost:", err)
		}
		cost = c
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Printf("cost: %d\n", cost)
	fmt.Printf("hash: %s\n", string(hash))
}
