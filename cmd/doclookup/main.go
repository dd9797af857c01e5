// doclookup is a one-shot CLI over the persisted indexes, for spot checks
// without running searchd:
//
//	doclookup -mode=word soul          names containing "soul"
//	doclookup -mode=document Soul_Food sentences of Soul_Food
//	doclookup -mode=claim "I love Soul Food"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/resolver"
	"github.com/factive/claimsearch/pkg/config"
	"github.com/factive/claimsearch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	mode := flag.String("mode", "word", "lookup mode: word, document, or claim")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: doclookup [-config file] [-mode word|document|claim] <query>")
		os.Exit(2)
	}
	query := strings.Join(flag.Args(), " ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup("warn", "text")

	if err := run(cfg, *mode, query); err != nil {
		fmt.Fprintf(os.Stderr, "doclookup: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string, query string) error {
	names := nameindex.Store{Dir: cfg.Index.NameIndexDir}
	docs := docindex.Store{Dir: cfg.Index.DocIndexDir}

	switch mode {
	case "word":
		results, err := names.Names(query)
		if err != nil {
			return err
		}
		for _, name := range results {
			fmt.Println(name)
		}
	case "document":
		sentences, err := docs.Content(query)
		if err != nil {
			return err
		}
		if sentences == nil {
			return fmt.Errorf("document %q is not indexed", query)
		}
		for _, s := range sentences {
			fmt.Printf("%d\t%s\n", s.No, s.Text)
		}
	case "claim":
		stopWords, err := resolver.LoadStopWords(cfg.Resolver.StopWordsFile)
		if err != nil {
			return err
		}
		res := resolver.New(names, stopWords, cfg.Resolver.MaxNamesPerWord, logger.WithComponent("doclookup"))
		for _, name := range res.Resolve(context.Background(), query) {
			fmt.Println(name)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}
