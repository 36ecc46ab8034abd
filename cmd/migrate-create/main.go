package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationsDir = "db/migrations"

func main() {
	name := flag.String("name", "", "migration name (no spaces)")
	flag.Parse()

	if *name == "" || strings.ContainsAny(*name, " ") {
		log.Fatal("a migration name without spaces is required")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := version + "_" + *name

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}
	for suffix, stub := range map[string]string{
		".up.sql":   "-- up migration\n",
		".down.sql": "-- down migration\n",
	} {
		path := filepath.Join(migrationsDir, base+suffix)
		if err := writeFile(path, stub); err != nil {
			log.Fatalf("create migration file: %v", err)
		}
		log.Printf("created %s", path)
	}
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
