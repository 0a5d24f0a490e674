// Command routes prints the application route table, and resolves
// locations and route names under a base path.
//
// Usage:
//
//	routes [-base path] list
//	routes [-base path] resolve <location>
//	routes [-base path] url <name> [key=value...]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gofu/webnav/config"
	"github.com/gofu/webnav/history"
	"github.com/gofu/webnav/nav"
	"github.com/gofu/webnav/route"
)

var errUsage = errors.New("usage: routes [-base path] list | resolve <location> | url <name> [key=value...]")

func main() {
	conf, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	flag.StringVar(&conf.BaseURL, "base", conf.BaseURL, "Base path the application is served under")
	flag.Parse()
	if err = run(os.Stdout, conf.BaseURL, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		log.Fatal(err)
	}
}

func newRouter(base string) (*nav.Router, error) {
	hist, err := history.New(base)
	if err != nil {
		return nil, err
	}
	views := route.Views{}
	for _, id := range route.IDs {
		views[id] = http.NotFoundHandler()
	}
	table, err := route.Default(views)
	if err != nil {
		return nil, err
	}
	return nav.NewRouter(table, hist), nil
}

func run(w io.Writer, base string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	router, err := newRouter(base)
	if err != nil {
		return err
	}
	switch cmd, args := args[0], args[1:]; cmd {
	case "list":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tPATH\tLOCATION\tDESCRIPTION")
		for _, item := range router.Menu("") {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Name, item.Path, item.Href, item.Description)
		}
		return tw.Flush()
	case "resolve":
		if len(args) != 1 {
			return errUsage
		}
		m, err := router.Resolve(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, m.Name)
		return err
	case "url":
		if len(args) == 0 {
			return errUsage
		}
		params := make(map[string]string, len(args)-1)
		for _, kv := range args[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("%w: param %q is not key=value", errUsage, kv)
			}
			params[k] = v
		}
		location, err := router.Navigate(args[0], params)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, location)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
