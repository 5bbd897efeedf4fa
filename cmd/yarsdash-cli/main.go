package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"yarsdash/internal/api"
	"yarsdash/internal/dashboard"
	"yarsdash/pkg/yarsdash"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yarsdash-cli <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version           Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  status            Show dashboard-server status\n")
		fmt.Fprintf(os.Stderr, "  health            Check the gRPC health service\n")
		fmt.Fprintf(os.Stderr, "  watch             Stream gRPC health changes until interrupted\n")
		fmt.Fprintf(os.Stderr, "  posts [sort]      List top posts (score|num_comments)\n")
		fmt.Fprintf(os.Stderr, "  ticker <symbol>   Show a ticker's detail\n")
		fmt.Fprintf(os.Stderr, "  history <symbol>  Show archived mention history\n")
		fmt.Fprintf(os.Stderr, "  analyze <prompt>  Run an analysis prompt\n")
		fmt.Fprintf(os.Stderr, "  trigger           Trigger a new scrape\n")
		fmt.Fprintf(os.Stderr, "  actions           List recent actions\n")
		fmt.Fprintf(os.Stderr, "\nThe server URL is read from YARSDASH_URL (default http://localhost:8080)\n")
		fmt.Fprintf(os.Stderr, "and the gRPC address from YARSDASH_GRPC (default localhost:9090).\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	baseURL := "http://localhost:8080"
	if u := os.Getenv("YARSDASH_URL"); u != "" {
		baseURL = u
	}
	client := yarsdash.NewClient(baseURL)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	arg := strings.Join(os.Args[2:], " ")
	var (
		out any
		err error
	)

	switch os.Args[1] {
	case "version":
		fmt.Printf("yarsdash-cli %s\n", version)
		return

	case "status":
		out, err = client.Health(ctx)

	case "health":
		var resp *healthpb.HealthCheckResponse
		if resp, err = healthClient().Check(ctx, api.DashboardService); err == nil {
			fmt.Println(protojson.Format(resp))
			return
		}

	case "watch":
		sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = healthClient().Watch(sigCtx, api.DashboardService, func(r *healthpb.HealthCheckResponse) {
			fmt.Printf("%s %s\n", time.Now().Format(time.TimeOnly), protojson.Format(r))
		})
		if err == nil {
			return
		}

	case "posts":
		out, err = client.TopPosts(ctx, dashboard.ParsePostSort(arg))

	case "ticker":
		requireArg(arg)
		var sel dashboard.DetailSelection
		sel, err = client.SelectTicker(ctx, "", dashboard.DisplayTicker(dashboard.PlainTicker(arg)))
		if err == nil && sel.Detail == nil {
			fmt.Printf("no detail for %s\n", sel.Selected)
			return
		}
		out = sel.Detail

	case "history":
		requireArg(arg)
		out, err = client.MentionHistory(ctx, arg)

	case "analyze":
		requireArg(arg)
		var analysis string
		if analysis, err = client.Analyze(ctx, arg); err == nil {
			fmt.Println(analysis)
			return
		}

	case "trigger":
		out, err = client.TriggerScrape(ctx)

	case "actions":
		out, err = client.Actions(ctx, 20)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func healthClient() *yarsdash.HealthClient {
	addr := "localhost:9090"
	if a := os.Getenv("YARSDASH_GRPC"); a != "" {
		addr = a
	}
	return yarsdash.NewHealthClient(addr)
}

func requireArg(arg string) {
	if arg == "" {
		flag.Usage()
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
