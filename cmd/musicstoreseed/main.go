// Package main migrates a musicstore database and fills it from a TOML seed file
package main

import (
	"flag"
	"log"
	"os"

	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/peterbourgon/ff"

	"github.com/musicstore/musicstore"
	"github.com/musicstore/musicstore/db"
	"github.com/musicstore/musicstore/seed"
)

func main() {
	set := flag.NewFlagSet(musicstore.Name+"seed", flag.ExitOnError)
	confDBPath := set.String("db-path", "musicstore.db", "path to database (optional)")
	confSeedPath := set.String("seed-path", "", "path to a toml seed file")
	if err := ff.Parse(set, os.Args[1:],
		ff.WithEnvVarPrefix(musicstore.NameUpper),
	); err != nil {
		log.Fatalf("error parsing args: %v\n", err)
	}
	if *confSeedPath == "" {
		log.Fatalf("please provide a seed file")
	}

	seedFile, err := os.Open(*confSeedPath)
	if err != nil {
		log.Fatalf("error opening seed file: %v\n", err)
	}
	defer seedFile.Close()
	file, err := seed.Decode(seedFile)
	if err != nil {
		log.Fatalf("error reading seed file: %v\n", err)
	}

	dbc, err := db.New(*confDBPath, db.DefaultOptions())
	if err != nil {
		log.Fatalf("error opening database: %v\n", err)
	}
	defer dbc.Close()
	if err := dbc.Migrate(); err != nil {
		log.Fatalf("error migrating database: %v\n", err)
	}

	stats, err := seed.Apply(dbc, file)
	if err != nil {
		log.Fatalf("error applying seed file: %v\n", err)
	}
	log.Printf("added %d genres, %d artists, %d albums, %d tracks, %d orders\n",
		stats.Genres, stats.Artists, stats.Albums, stats.Tracks, stats.Orders)
}
