// Package main is the musicstore server entrypoint
//
//nolint:forbidigo
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/joho/godotenv"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff"
	"github.com/sentriz/gormstore"

	"github.com/musicstore/musicstore"
	"github.com/musicstore/musicstore/cart"
	"github.com/musicstore/musicstore/catalog"
	"github.com/musicstore/musicstore/db"
	"github.com/musicstore/musicstore/orders"
	"github.com/musicstore/musicstore/server/ctrladmin"
	"github.com/musicstore/musicstore/server/ctrlbase"
	"github.com/musicstore/musicstore/server/ctrlstore"
)

func main() {
	set := flag.NewFlagSet(musicstore.Name, flag.ExitOnError)
	confListenAddr := set.String("listen-addr", "0.0.0.0:4848", "listen address (optional)")

	confTLSCert := set.String("tls-cert", "", "path to TLS certificate (optional)")
	confTLSKey := set.String("tls-key", "", "path to TLS private key (optional)")

	confDBPath := set.String("db-path", "musicstore.db", "path to database (optional)")

	confProxyPrefix := set.String("proxy-prefix", "", "url path prefix to use if behind proxy. eg '/store' (optional)")
	confHTTPLog := set.Bool("http-log", true, "http request logging (optional)")

	confSessionIdleTimeout := set.Duration("session-idle-timeout", 30*time.Minute, "how long an unused session and its cart id are kept (optional)")

	confShowVersion := set.Bool("version", false, "show musicstore version")
	_ = set.String("config-path", "", "path to config (optional)")

	// a .env next to the binary can hold MUSICSTORE_ variables
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("error loading .env file: %v\n", err)
		}
	}

	if err := ff.Parse(set, os.Args[1:],
		ff.WithConfigFileFlag("config-path"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix(musicstore.NameUpper),
	); err != nil {
		log.Fatalf("error parsing args: %v\n", err)
	}

	if *confShowVersion {
		fmt.Printf("v%s\n", musicstore.Version)
		os.Exit(0)
	}

	if *confSessionIdleTimeout < time.Second {
		log.Fatalf("session idle timeout %v is too short", *confSessionIdleTimeout)
	}

	log.Printf("starting musicstore v%s\n", musicstore.Version)
	log.Printf("provided config\n")
	set.VisitAll(func(f *flag.Flag) {
		log.Printf("    %-22s %v\n", f.Name, f.Value)
	})

	dbc, err := db.New(*confDBPath, db.DefaultOptions())
	if err != nil {
		log.Fatalf("error opening database: %v\n", err)
	}
	defer dbc.Close()

	if err := dbc.Migrate(); err != nil {
		log.Panicf("error migrating database: %v\n", err)
	}

	proxyPrefixExpr := regexp.MustCompile(`^\/*(.*?)\/*$`)
	*confProxyPrefix = proxyPrefixExpr.ReplaceAllString(*confProxyPrefix, `/$1`)

	sessKey, err := ctrlbase.SessionKey(dbc)
	if err != nil {
		log.Panicf("error getting session key: %v\n", err)
	}
	sessDB := gormstore.New(dbc.DB, sessKey)
	sessDB.SessionOpts.HttpOnly = true
	sessDB.SessionOpts.SameSite = http.SameSiteLaxMode
	sessDB.SessionOpts.Path = *confProxyPrefix
	sessDB.MaxAge(int(confSessionIdleTimeout.Seconds()))

	ctrlBase, err := ctrlbase.New(dbc, cart.New(dbc), sessDB, *confProxyPrefix)
	if err != nil {
		log.Panicf("error creating base controller: %v\n", err)
	}
	ctrlStore := ctrlstore.New(ctrlBase, catalog.New(dbc))
	ctrlAdmin := ctrladmin.New(ctrlBase, orders.New(dbc))

	mux := mux.NewRouter()
	ctrlbase.AddRoutes(ctrlBase, mux, *confHTTPLog)
	ctrlstore.AddRoutes(ctrlStore, mux)
	ctrladmin.AddRoutes(ctrlAdmin, mux)

	noCleanup := func(_ error) {}

	var g run.Group
	g.Add(func() error {
		log.Printf("starting job 'http' on %s\n", *confListenAddr)
		server := &http.Server{
			Addr:              *confListenAddr,
			Handler:           mux,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		if *confTLSCert != "" && *confTLSKey != "" {
			return server.ListenAndServeTLS(*confTLSCert, *confTLSKey)
		}
		return server.ListenAndServe()
	}, noCleanup)

	quitCleanup := make(chan struct{})
	g.Add(func() error {
		log.Printf("starting job 'session clean'\n")
		sessDB.PeriodicCleanup(10*time.Minute, quitCleanup)
		return nil
	}, func(_ error) {
		close(quitCleanup)
	})

	if err := g.Run(); err != nil {
		log.Panicf("error in job: %v", err)
	}
}
