// Command server serves the hotel reservations application: upload, browse
// and chart reservations, under a configurable base path.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gofu/webnav/config"
	"github.com/gofu/webnav/server"
)

func main() {
	var file, addr, base, db string
	flag.StringVar(&file, "config", os.Getenv("WEBNAV_CONFIG"), "TOML configuration file")
	flag.StringVar(&addr, "addr", "", "HTTP listen address (default "+config.Default().Addr+")")
	flag.StringVar(&base, "base", "", "Base path the application is served under (default $BASE_URL or /)")
	flag.StringVar(&db, "db", "", "SQLite database path (default in memory)")
	flag.Parse()

	conf, err := config.Load(file)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			conf.Addr = addr
		case "base":
			conf.BaseURL = base
		case "db":
			conf.Database = db
		}
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = server.ListenAndServe(ctx, conf)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
