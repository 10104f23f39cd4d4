package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/client"
	"github.com/noah-isme/remui-admin-api/internal/listctl"
	"github.com/noah-isme/remui-admin-api/internal/models"
)

const usage = `commands:
  type <text>        replace the search box text
  focus | blur       move focus into or out of the search box
  pick <n>           select the n-th suggestion (1-based)
  submit             search with the current text
  sort <field>       toggle sort on a column
  filter <name> [v]  set or clear a filter
  page <n>           go to a 0-based page
  perpage <n>        change the page size
  state              print controller state
  quit`

func main() {
	var (
		endpoint  string
		itemsKey  string
		token     string
		label     string
		debounce  time.Duration
		blurGrace time.Duration
		timeout   time.Duration
		minChars  int
		verbose   bool
	)

	flag.StringVar(&endpoint, "endpoint", "http://localhost:8080/admin/users", "Listing page URL")
	flag.StringVar(&itemsKey, "items", "users", "Key holding records in list responses")
	flag.StringVar(&token, "token", os.Getenv("LISTCTL_TOKEN"), "Bearer token when auth is enabled")
	flag.StringVar(&label, "label", "username", "Field copied into the search box on select")
	flag.DurationVar(&debounce, "debounce", 300*time.Millisecond, "Suggestion debounce")
	flag.DurationVar(&blurGrace, "blur-grace", 200*time.Millisecond, "Delay before suggestions close on blur")
	flag.DurationVar(&timeout, "timeout", 8*time.Second, "Request timeout")
	flag.IntVar(&minChars, "min-chars", 2, "Characters before suggestions are fetched")
	flag.BoolVar(&verbose, "v", false, "Log requests")
	flag.Parse()

	logr := zap.NewNop()
	if verbose {
		var err error
		if logr, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
	}
	defer logr.Sync() //nolint:errcheck

	fetcher, err := client.New(endpoint, client.Options{ItemsKey: itemsKey, Timeout: timeout, Token: token, Logger: logr})
	if err != nil {
		log.Fatalf("failed to build client: %v", err)
	}

	view := newTerminalView(os.Stdout, label)
	ctl := listctl.New(listctl.Config{
		Debounce:       debounce,
		BlurGrace:      blurGrace,
		RequestTimeout: timeout,
		MinChars:       minChars,
		LabelField:     label,
		Mode:           listctl.AJAX,
	}, fetcher, view, listctl.RealScheduler(), models.SearchSpec{})
	defer ctl.Close()

	fmt.Println(usage)
	ctl.GoToPage(0)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch cmd {
		case "":
		case "type":
			ctl.Input(arg)
		case "focus":
			ctl.Focus()
		case "blur":
			ctl.Blur()
		case "pick":
			n, _ := strconv.Atoi(arg)
			item, ok := view.suggestion(n - 1)
			if !ok {
				fmt.Println("no such suggestion")
				continue
			}
			ctl.FocusSuggestions()
			ctl.Select(item)
		case "submit":
			ctl.Submit()
		case "sort":
			ctl.SortBy(arg)
		case "filter":
			name, value, _ := strings.Cut(arg, " ")
			ctl.SetFilter(name, value)
		case "page":
			n, _ := strconv.Atoi(arg)
			ctl.GoToPage(n)
		case "perpage":
			n, _ := strconv.Atoi(arg)
			ctl.SetPageSize(n)
		case "state":
			spec := ctl.Spec()
			fmt.Printf("state=%s table=%t text=%q search=%q sort=%s %s page=%d filters=%v\n",
				ctl.State(), ctl.TableVisible(), ctl.Text(), spec.Query, spec.Sort.Field, spec.Sort.Direction, spec.Page, spec.Filters)
		case "quit", "exit":
			return
		default:
			fmt.Println(usage)
		}
	}
}
