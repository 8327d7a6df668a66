// Command content inspects the article catalog offline.
//
// Usage:
//
//	go run ./cmd/content [-dir path] validate
//	go run ./cmd/content [-dir path] search <query...>
//	go run ./cmd/content [-dir path] latest [n]
//	go run ./cmd/content [-dir path] stats
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
)

func main() {
	dir := flag.String("dir", "", "content directory (default: embedded)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: content [-dir path] validate | search <query> | latest [n] | stats")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(os.Stdout, *dir, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "content: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	catalog, err := content.LoadDefault(dir)
	if err != nil {
		return err
	}
	eng := engine.New(catalog)

	switch args[0] {
	case "validate":
		fmt.Fprintf(w, "ok: %d topics, %d articles\n", len(catalog.Topics()), catalog.Len())
		return nil
	case "search":
		query := strings.Join(args[1:], " ")
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("search needs a query")
		}
		printArticles(w, eng.Search(query))
		return nil
	case "latest":
		n := 6
		if len(args) > 1 {
			n, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("latest: bad count %q", args[1])
			}
		}
		printArticles(w, eng.Latest(n))
		return nil
	case "stats":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Stats())
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printArticles(w io.Writer, articles []content.Article) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTOPIC\tDATE\tTITLE")
	for _, a := range articles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Slug, a.TopicSlug, a.Date, a.Title)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d article(s)\n", len(articles))
}
