package main

import (
	"fmt"
	"os"
	"strings"
	"triggers-triumphs-api/src"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		src.Run()
	} else {
		switch strings.ToLower(os.Args[1]) {
		case "server":
			src.Run()
		case "procode":
			fmt.Println(src.GenerateProCode())
		default:
			fmt.Println("unsupported command")
		}
	}
}
