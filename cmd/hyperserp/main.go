// Command hyperserp runs the hybrid search server and ships thin client
// subcommands for talking to a running instance.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"hyperserp/internal/config"
	"hyperserp/internal/server"
	"hyperserp/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, `hyperserp - hybrid lexical + live web search service

Usage:
  hyperserp serve   [-addr :8090]
  hyperserp search  [-server URL] [-k N] [-summarize N] <query...>
  hyperserp ingest  [-server URL] <url>
  hyperserp scrape  [-server URL] [-max N] [-fetch=true] <query...>
  hyperserp version
`)
}

func main() {
	_ = godotenv.Load()
	_ = config.LoadAndApply()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = cmdServe(os.Args[2:])
	case "search":
		err = cmdSearch(os.Args[2:])
	case "ingest":
		err = cmdIngest(os.Args[2:])
	case "scrape":
		err = cmdScrape(os.Args[2:])
	case "version":
		fmt.Println(version.String())
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", config.Addr(), "listen address")
	_ = fs.Parse(args)
	return server.Run(*addr)
}

func serverFlag(fs *flag.FlagSet) *string {
	def := "http://127.0.0.1:8090"
	if v := os.Getenv("HYPERSERP_ADDR"); v != "" && v[0] != ':' {
		def = "http://" + v
	}
	return fs.String("server", def, "base URL of a running hyperserp server")
}

func cmdSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	base := serverFlag(fs)
	topK := fs.Int("k", 10, "number of results")
	summarize := fs.Int("summarize", 3, "results to summarize and classify")
	_ = fs.Parse(args)
	query := joinArgs(fs.Args())
	if query == "" {
		return fmt.Errorf("search: query required")
	}
	u := *base + "/search?" + url.Values{
		"q":             {query},
		"top_k":         {strconv.Itoa(*topK)},
		"summarize_top": {strconv.Itoa(*summarize)},
	}.Encode()
	return getAndPrint(u)
}

func cmdIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	base := serverFlag(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("ingest: exactly one url required")
	}
	return postAndPrint(*base+"/ingest", map[string]any{"url": fs.Arg(0)})
}

func cmdScrape(args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	base := serverFlag(fs)
	maxResults := fs.Int("max", 10, "maximum hits to ingest")
	fetchPages := fs.Bool("fetch", true, "fetch and extract each hit's page")
	_ = fs.Parse(args)
	query := joinArgs(fs.Args())
	if query == "" {
		return fmt.Errorf("scrape: query required")
	}
	return postAndPrint(*base+"/scrape_and_ingest", map[string]any{
		"query":       query,
		"max_results": *maxResults,
		"fetch_pages": *fetchPages,
	})
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

var httpClient = &http.Client{Timeout: 120 * time.Second}

func getAndPrint(u string) error {
	resp, err := httpClient.Get(u)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func postAndPrint(u string, body map[string]any) error {
	b, _ := json.Marshal(body)
	resp, err := httpClient.Post(u, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

// printResponse pretty-prints the JSON body and maps non-2xx to an error
// exit after printing the server's error envelope.
func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if json.Indent(&buf, raw, "", "  ") == nil {
		raw = buf.Bytes()
	}
	fmt.Println(string(raw))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
