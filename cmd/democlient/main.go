// Command democlient is an interactive REPL for talking to a demoserver
// instance, grounded on the original CORECONF example client's command set
// (get/fetch/set/delete/help/quit; the original's list subcommand is the
// separate explain binary) but carried over transportclient's WebSocket
// framing instead of raw CoAP/UDP.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samsirohi11/coreconf/coreconf"
	"github.com/samsirohi11/coreconf/sidcat"
	"github.com/samsirohi11/coreconf/transportclient"
)

func main() {
	sidFile := flag.String("sid", "", "path to the SID file (.sid JSON)")
	server := flag.String("server", "ws://127.0.0.1:5683/coreconf", "demoserver WebSocket URL")
	flag.Parse()

	if *sidFile == "" {
		fmt.Fprintln(os.Stderr, "-sid is required")
		os.Exit(1)
	}

	catalog, err := sidcat.LoadFile(*sidFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load SID file:", err)
		os.Exit(1)
	}
	builder := coreconf.NewRequestBuilder(catalog)

	fmt.Printf("Loaded module %q\n", catalog.ModuleName)
	fmt.Println("Server:", *server)

	client, err := transportclient.NewClient(transportclient.DefaultConfig(*server), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build client:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect:", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println("Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("coreconf> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "get":
			runGet(client)
		case "fetch":
			runFetch(client, builder, rest)
		case "set":
			runSet(client, builder, rest)
		case "delete":
			runDelete(client, builder, rest)
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`Commands:
  get                        Get full datastore
  fetch <sid1> [sid2...]     Fetch specific SIDs
  set <sid>=<value>          Set a value (e.g., set 60002=Hello)
  delete <sid>               Delete a SID
  help                       Show this help
  quit                       Exit`)
}

func runGet(client *transportclient.Client) {
	resp, err := client.SendRequest(coreconf.NewRequest(coreconf.MethodGet))
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	fmt.Printf("  %s (%d bytes)\n", resp.Code, len(resp.Payload))
}

func runFetch(client *transportclient.Client, builder *coreconf.RequestBuilder, rest string) {
	sids, err := parseSids(rest)
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	payload, err := builder.BuildFetchSids(sids)
	if err != nil {
		fmt.Println("  error building request:", err)
		return
	}
	resp, err := client.SendRequest(coreconf.NewRequest(coreconf.MethodFetch).WithPayload(payload, coreconf.ContentFormatYangIdentifiersCBOR))
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	values, err := builder.ParseResponse(resp.Payload)
	if err != nil {
		fmt.Println("  error decoding response:", err)
		return
	}
	if len(values) == 0 {
		fmt.Println("  (no data for requested SIDs)")
		return
	}
	for _, v := range values {
		fmt.Printf("  %d = %v\n", v.Sid, v.Value)
	}
}

func runSet(client *transportclient.Client, builder *coreconf.RequestBuilder, rest string) {
	sidStr, value, ok := strings.Cut(rest, "=")
	if !ok {
		fmt.Println("  usage: set <sid>=<value>")
		return
	}
	sid, err := strconv.ParseInt(strings.TrimSpace(sidStr), 10, 64)
	if err != nil {
		fmt.Println("  invalid sid:", err)
		return
	}
	payload, err := builder.BuildIPatchSids([]coreconf.SidChange{{Sid: sid, Value: strings.TrimSpace(value), HasValue: true}})
	if err != nil {
		fmt.Println("  error building request:", err)
		return
	}
	resp, err := client.SendRequest(coreconf.NewRequest(coreconf.MethodIPatch).WithPayload(payload, coreconf.ContentFormatYangInstancesCBORSeq))
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	fmt.Println("  ", resp.Code)
}

func runDelete(client *transportclient.Client, builder *coreconf.RequestBuilder, rest string) {
	sids, err := parseSids(rest)
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	changes := make([]coreconf.SidChange, len(sids))
	for i, sid := range sids {
		changes[i] = coreconf.SidChange{Sid: sid, HasValue: false}
	}
	payload, err := builder.BuildIPatchSids(changes)
	if err != nil {
		fmt.Println("  error building request:", err)
		return
	}
	resp, err := client.SendRequest(coreconf.NewRequest(coreconf.MethodIPatch).WithPayload(payload, coreconf.ContentFormatYangInstancesCBORSeq))
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	fmt.Println("  ", resp.Code)
}

func parseSids(rest string) ([]int64, error) {
	fields := strings.Fields(rest)
	sids := make([]int64, 0, len(fields))
	for _, f := range fields {
		sid, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sid %q: %w", f, err)
		}
		sids = append(sids, sid)
	}
	return sids, nil
}
